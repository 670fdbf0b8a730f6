package keyevent

// Legacy DOM virtual key codes
const (
	CodeBackspace = 8
	CodeTab       = 9
	CodeReturn    = 13
	CodeShift     = 16
	CodeControl   = 17
	CodeAlt       = 18
	CodeEscape    = 27
	CodeSpace     = 32
	CodePageUp    = 33
	CodePageDown  = 34
	CodeEnd       = 35
	CodeHome      = 36
	CodeLeft      = 37
	CodeUp        = 38
	CodeRight     = 39
	CodeDown      = 40
	CodeInsert    = 45
	CodeDelete    = 46
	CodeOSLeft    = 91
	CodeOSRight   = 92
	CodeBackQuote = 192
	CodeMeta      = 224
)

var codeNames = map[int]string{
	CodeBackspace: "backspace",
	CodeTab:       "tab",
	CodeReturn:    "enter",
	CodeEscape:    "esc",
	CodeSpace:     " ",
	CodePageUp:    "pgup",
	CodePageDown:  "pgdown",
	CodeEnd:       "end",
	CodeHome:      "home",
	CodeLeft:      "left",
	CodeUp:        "up",
	CodeRight:     "right",
	CodeDown:      "down",
	CodeInsert:    "insert",
	CodeDelete:    "delete",
}

// domNames covers events that arrive with a DOM key name but no key code
var domNames = map[string]string{
	"Backspace":  "backspace",
	"Tab":        "tab",
	"Enter":      "enter",
	"Escape":     "esc",
	" ":          " ",
	"PageUp":     "pgup",
	"PageDown":   "pgdown",
	"End":        "end",
	"Home":       "home",
	"ArrowLeft":  "left",
	"ArrowUp":    "up",
	"ArrowRight": "right",
	"ArrowDown":  "down",
	"Insert":     "insert",
	"Delete":     "delete",
}

// CodeForRune returns the virtual key code a US layout reports for r, or 0
// when the rune has no stable code.
func CodeForRune(r rune) int {
	switch {
	case r >= 'a' && r <= 'z':
		return int(r - 'a' + 'A')
	case r >= 'A' && r <= 'Z':
		return int(r)
	case r >= '0' && r <= '9':
		return int(r)
	case r == ' ':
		return CodeSpace
	case r == '`' || r == '~':
		return CodeBackQuote
	}
	return 0
}

// CodeForName returns the virtual key code for a binding-style key name
// such as "down", "pgup" or "enter", or 0 when the name is unknown.
func CodeForName(name string) int {
	for code, n := range codeNames {
		if n == name {
			return code
		}
	}
	if name == "space" {
		return CodeSpace
	}
	return 0
}
