package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed)
	faint  = color.New(color.Faint)
)

// success prints a success line
func success(w io.Writer, format string, args ...any) {
	green.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// warning prints a warning line
func warning(w io.Writer, format string, args ...any) {
	yellow.Fprintf(w, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// failure prints an error line
func failure(w io.Writer, format string, args ...any) {
	red.Fprintf(w, "✗ %s\n", fmt.Sprintf(format, args...))
}

// subtle prints a dimmed line
func subtle(w io.Writer, format string, args ...any) {
	faint.Fprintf(w, "%s\n", fmt.Sprintf(format, args...))
}
