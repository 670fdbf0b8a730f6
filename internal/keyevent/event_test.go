package keyevent

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestStop_SuppressesEverything(t *testing.T) {
	ev := New(KeyDown, "g", 71)
	Stop(ev)

	if !ev.DefaultPrevented() {
		t.Error("expected default to be prevented")
	}
	if !ev.PropagationStopped() {
		t.Error("expected propagation to be stopped")
	}
	if !ev.ImmediatePropagationStopped() {
		t.Error("expected immediate propagation to be stopped")
	}
	if !ev.Consumed() {
		t.Error("expected event to be consumed")
	}

	// nil events are ignored
	Stop(nil)
}

func TestEvent_IsModifierOnly(t *testing.T) {
	tests := []struct {
		name     string
		ev       *Event
		expected bool
	}{
		{"shift by code", New(KeyDown, "Shift", CodeShift), true},
		{"control by code", New(KeyDown, "Control", CodeControl), true},
		{"alt by code", New(KeyDown, "Alt", CodeAlt), true},
		{"meta by code", New(KeyDown, "Meta", CodeMeta), true},
		{"meta by name only", New(KeyDown, "Meta", 0), true},
		{"os key", New(KeyDown, "OS", CodeOSLeft), true},
		{"letter", New(KeyDown, "g", 71), false},
		{"letter with ctrl", New(KeyDown, "g", 71).WithModifiers(true, false, false, false), false},
		{"arrow", New(KeyDown, "ArrowDown", CodeDown), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.IsModifierOnly(); got != tt.expected {
				t.Errorf("IsModifierOnly() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEvent_String(t *testing.T) {
	tests := []struct {
		name     string
		ev       *Event
		expected string
	}{
		{"down arrow", New(KeyDown, "ArrowDown", CodeDown), "down"},
		{"dom name without code", New(KeyDown, "ArrowUp", 0), "up"},
		{"tab", New(KeyDown, "Tab", CodeTab), "tab"},
		{"shift tab", New(KeyDown, "Tab", CodeTab).WithModifiers(false, true, false, false), "shift+tab"},
		{"space", New(KeyDown, " ", CodeSpace), " "},
		{"escape", New(KeyDown, "Escape", CodeEscape), "esc"},
		{"page down", New(KeyDown, "PageDown", CodePageDown), "pgdown"},
		{"ctrl letter", New(KeyDown, "G", 71).WithModifiers(true, false, false, false), "ctrl+g"},
		{"alt letter", New(KeyDown, "x", 88).WithModifiers(false, false, true, false), "alt+x"},
		{"upper letter keeps case", New(KeyDown, "G", 71).WithModifiers(false, true, false, false), "G"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestEvent_Release(t *testing.T) {
	down := New(KeyDown, "g", 71).WithModifiers(true, false, false, false)
	Stop(down)

	up := down.Release()
	if up.Type != KeyUp {
		t.Errorf("Type = %q, want %q", up.Type, KeyUp)
	}
	if up.Key != "g" || up.KeyCode != 71 || !up.Ctrl {
		t.Errorf("release lost key data: %+v", up)
	}
	if up.Consumed() {
		t.Error("release must start unsuppressed")
	}
}

func TestFromTea(t *testing.T) {
	tests := []struct {
		name    string
		msg     tea.KeyMsg
		key     string
		keyCode int
		ctrl    bool
		shift   bool
		alt     bool
	}{
		{"rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}}, "g", 71, false, false, false},
		{"upper rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}}, "G", 71, false, true, false},
		{"alt rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}, Alt: true}, "x", 88, false, false, true},
		{"backquote", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'`'}}, "`", CodeBackQuote, false, false, false},
		{"ctrl g", tea.KeyMsg{Type: tea.KeyCtrlG}, "g", 71, true, false, false},
		{"ctrl backquote", tea.KeyMsg{Type: tea.KeyCtrlAt}, "`", CodeBackQuote, true, false, false},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, "Enter", CodeReturn, false, false, false},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, "Tab", CodeTab, false, false, false},
		{"shift tab", tea.KeyMsg{Type: tea.KeyShiftTab}, "Tab", CodeTab, false, true, false},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, " ", CodeSpace, false, false, false},
		{"down", tea.KeyMsg{Type: tea.KeyDown}, "ArrowDown", CodeDown, false, false, false},
		{"home", tea.KeyMsg{Type: tea.KeyHome}, "Home", CodeHome, false, false, false},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, "Escape", CodeEscape, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := FromTea(tt.msg)
			if ev.Type != KeyDown || !ev.Trusted {
				t.Fatalf("expected trusted keydown, got %+v", ev)
			}
			if ev.Key != tt.key {
				t.Errorf("Key = %q, want %q", ev.Key, tt.key)
			}
			if ev.KeyCode != tt.keyCode {
				t.Errorf("KeyCode = %d, want %d", ev.KeyCode, tt.keyCode)
			}
			if ev.Ctrl != tt.ctrl || ev.Shift != tt.shift || ev.Alt != tt.alt {
				t.Errorf("modifiers = ctrl:%v shift:%v alt:%v, want ctrl:%v shift:%v alt:%v",
					ev.Ctrl, ev.Shift, ev.Alt, tt.ctrl, tt.shift, tt.alt)
			}
		})
	}
}
