package keybinds

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/studiowebux/tabkeys/internal/keyevent"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty chord specification")
	ErrInvalidSpec = errors.New("invalid chord specification")
)

// ParseChord parses a chord specification such as "ctrl+shift+g",
// "Alt+Down" or "ctrl+`" into a Chord without an action.
//
// Modifier names are case-insensitive: ctrl/control, shift, alt/option,
// meta/cmd/super. The last segment is the base key; "+" itself can be
// bound as "ctrl++".
func ParseChord(spec string) (Chord, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Chord{}, ErrEmptySpec
	}

	var c Chord
	keyPart := spec

	if strings.HasSuffix(spec, "++") {
		keyPart = "+"
		spec = strings.TrimSuffix(spec, "+")
	}

	parts := strings.Split(spec, "+")
	if keyPart != "+" {
		keyPart = parts[len(parts)-1]
	}

	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "ctrl", "control":
			c.Ctrl = true
		case "shift":
			c.Shift = true
		case "alt", "option":
			c.Alt = true
		case "meta", "cmd", "command", "super":
			c.Meta = true
		case "":
			return Chord{}, fmt.Errorf("%w: empty modifier in %q", ErrInvalidSpec, spec)
		default:
			return Chord{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
	}

	keyPart = strings.TrimSpace(keyPart)
	if keyPart == "" {
		return Chord{}, fmt.Errorf("%w: missing key", ErrInvalidSpec)
	}

	switch strings.ToLower(keyPart) {
	case "ctrl", "control", "shift", "alt", "option", "meta", "cmd", "command", "super":
		return Chord{}, fmt.Errorf("%w: %q is a modifier, not a key", ErrInvalidSpec, keyPart)
	}

	if utf8.RuneCountInString(keyPart) == 1 {
		r, _ := utf8.DecodeRuneInString(keyPart)
		c.Key = strings.ToLower(keyPart)
		c.KeyCode = keyevent.CodeForRune(r)
		return c, nil
	}

	name := strings.ToLower(keyPart)
	switch name {
	case "escape":
		name = "esc"
	case "return":
		name = "enter"
	case "pageup":
		name = "pgup"
	case "pagedown":
		name = "pgdown"
	}

	code := keyevent.CodeForName(name)
	if code == 0 {
		return Chord{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
	}
	c.KeyCode = code
	c.Key = keyPart
	if code == keyevent.CodeSpace {
		c.Key = " "
	}
	return c, nil
}
