package keyevent

import (
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

// FromTea converts a terminal key press into a trusted key-down event.
// Terminals never report Meta, and they only report Shift for a few named
// keys or through the case of a typed letter.
func FromTea(msg tea.KeyMsg) *Event {
	ev := &Event{Type: KeyDown, Trusted: true, Alt: msg.Alt}

	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return ev
		}
		r := msg.Runes[0]
		ev.Key = string(r)
		ev.KeyCode = CodeForRune(r)
		ev.Shift = unicode.IsUpper(r) || r == '~'
	case tea.KeySpace:
		ev.Key, ev.KeyCode = " ", CodeSpace
	case tea.KeyEnter:
		ev.Key, ev.KeyCode = "Enter", CodeReturn
	case tea.KeyTab:
		ev.Key, ev.KeyCode = "Tab", CodeTab
	case tea.KeyShiftTab:
		ev.Key, ev.KeyCode, ev.Shift = "Tab", CodeTab, true
	case tea.KeyEsc:
		ev.Key, ev.KeyCode = "Escape", CodeEscape
	case tea.KeyBackspace:
		ev.Key, ev.KeyCode = "Backspace", CodeBackspace
	case tea.KeyDelete:
		ev.Key, ev.KeyCode = "Delete", CodeDelete
	case tea.KeyInsert:
		ev.Key, ev.KeyCode = "Insert", CodeInsert
	case tea.KeyUp:
		ev.Key, ev.KeyCode = "ArrowUp", CodeUp
	case tea.KeyDown:
		ev.Key, ev.KeyCode = "ArrowDown", CodeDown
	case tea.KeyLeft:
		ev.Key, ev.KeyCode = "ArrowLeft", CodeLeft
	case tea.KeyRight:
		ev.Key, ev.KeyCode = "ArrowRight", CodeRight
	case tea.KeyShiftUp:
		ev.Key, ev.KeyCode, ev.Shift = "ArrowUp", CodeUp, true
	case tea.KeyShiftDown:
		ev.Key, ev.KeyCode, ev.Shift = "ArrowDown", CodeDown, true
	case tea.KeyCtrlUp:
		ev.Key, ev.KeyCode, ev.Ctrl = "ArrowUp", CodeUp, true
	case tea.KeyCtrlDown:
		ev.Key, ev.KeyCode, ev.Ctrl = "ArrowDown", CodeDown, true
	case tea.KeyHome:
		ev.Key, ev.KeyCode = "Home", CodeHome
	case tea.KeyEnd:
		ev.Key, ev.KeyCode = "End", CodeEnd
	case tea.KeyPgUp:
		ev.Key, ev.KeyCode = "PageUp", CodePageUp
	case tea.KeyPgDown:
		ev.Key, ev.KeyCode = "PageDown", CodePageDown
	case tea.KeyCtrlPgUp:
		ev.Key, ev.KeyCode, ev.Ctrl = "PageUp", CodePageUp, true
	case tea.KeyCtrlPgDown:
		ev.Key, ev.KeyCode, ev.Ctrl = "PageDown", CodePageDown, true
	case tea.KeyCtrlAt:
		// most terminals send NUL for ctrl+`
		ev.Key, ev.KeyCode, ev.Ctrl = "`", CodeBackQuote, true
	default:
		if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
			r := rune('a' + int(msg.Type-tea.KeyCtrlA))
			ev.Key, ev.KeyCode, ev.Ctrl = string(r), CodeForRune(r), true
		}
	}

	return ev
}
