package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"} // Dark goldenrod / Yellow
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)
)

// View renders the open overlay, or the status screen
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if o, ok := m.window.TopOverlay(); ok && m.width > 0 {
		return o.View(m.width, m.height)
	}
	return m.renderMain()
}

// renderMain renders the title, the status bar and the recent activity
func (m *Model) renderMain() string {
	width := max(m.width, MinStatusWidth)

	var b strings.Builder
	b.WriteString(styleTitle.Render("tabkeys"))
	b.WriteString("  ")
	b.WriteString(styleSubtle.Render(m.connection))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar(width))
	b.WriteString("\n\n")

	activity := m.agent.Recent()
	limit := MaxActivityLines
	if m.height > 0 {
		limit = min(limit, max(1, m.height-MainViewOverheadLines))
	}
	if len(activity) > limit {
		activity = activity[len(activity)-limit:]
	}
	if len(activity) == 0 {
		b.WriteString(styleSubtle.Render("no activity yet"))
		b.WriteString("\n")
	}
	for _, a := range activity {
		line := fmt.Sprintf("%s  %s", a.At.Format("15:04:05"), a.Text)
		style := styleSubtle
		if strings.Contains(a.Text, "failed") {
			style = styleError
		}
		b.WriteString(style.Render(ansi.Truncate(line, width, "…")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleSubtle.Render("ctrl+c quit • q quit when unbound"))
	return b.String()
}

// renderStatusBar shows the table size, the guard and the last key
func (m *Model) renderStatusBar(width int) string {
	matcher := m.agent.Matcher()

	var state string
	switch {
	case m.errorMsg != "":
		state = styleError.Render("error: " + m.errorMsg)
	case !m.started:
		state = styleWarning.Render("starting")
	case matcher.TornDown():
		state = styleWarning.Render("unsubscribed")
	case matcher.Guarded():
		state = styleWarning.Render("dispatching")
	default:
		state = styleSuccess.Render("listening")
	}

	parts := []string{
		state,
		fmt.Sprintf("%d chords", len(matcher.Table())),
		"store: " + m.storeLabel,
	}
	if m.lastKey != "" {
		key := m.lastKey
		if m.lastUsed {
			key += " (handled)"
		}
		parts = append(parts, "last key: "+key)
	}

	return ansi.Truncate(strings.Join(parts, " │ "), width, "…")
}
