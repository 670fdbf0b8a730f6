package keybinds

import (
	"errors"
	"testing"

	"github.com/studiowebux/tabkeys/internal/keyevent"
)

func TestParseChord(t *testing.T) {
	tests := []struct {
		spec     string
		expected Chord
	}{
		{"ctrl+g", Chord{Ctrl: true, Key: "g", KeyCode: 71}},
		{"Ctrl+Shift+G", Chord{Ctrl: true, Shift: true, Key: "g", KeyCode: 71}},
		{"ctrl+`", Chord{Ctrl: true, Key: "`", KeyCode: keyevent.CodeBackQuote}},
		{"alt+down", Chord{Alt: true, Key: "down", KeyCode: keyevent.CodeDown}},
		{"cmd+option+PageUp", Chord{Meta: true, Alt: true, Key: "PageUp", KeyCode: keyevent.CodePageUp}},
		{"ctrl+escape", Chord{Ctrl: true, Key: "escape", KeyCode: keyevent.CodeEscape}},
		{"ctrl+space", Chord{Ctrl: true, Key: " ", KeyCode: keyevent.CodeSpace}},
		{"ctrl++", Chord{Ctrl: true, Key: "+"}},
		{"g", Chord{Key: "g", KeyCode: 71}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseChord(tt.spec)
			if err != nil {
				t.Fatalf("ParseChord(%q) error: %v", tt.spec, err)
			}
			if got.Ctrl != tt.expected.Ctrl || got.Shift != tt.expected.Shift ||
				got.Alt != tt.expected.Alt || got.Meta != tt.expected.Meta {
				t.Errorf("modifiers = %+v, want %+v", got, tt.expected)
			}
			AssertField(t, "Key", got.Key, tt.expected.Key)
			AssertField(t, "KeyCode", got.KeyCode, tt.expected.KeyCode)
		})
	}
}

func TestParseChord_Errors(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr error
	}{
		{"", ErrEmptySpec},
		{"   ", ErrEmptySpec},
		{"ctrl+", ErrInvalidSpec},
		{"hyper+g", ErrInvalidSpec},
		{"ctrl++g", ErrInvalidSpec},
		{"ctrl+shift", ErrInvalidSpec},
		{"ctrl+banana", ErrInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := ParseChord(tt.spec)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseChord(%q) error = %v, want %v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestParseChord_MatchesTerminalEvents(t *testing.T) {
	c, err := ParseChord("ctrl+g")
	if err != nil {
		t.Fatal(err)
	}
	if !c.Matches(ctrl("g", 71)) {
		t.Error("parsed chord does not match its own key event")
	}
}
