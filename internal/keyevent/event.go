package keyevent

import (
	"strings"
)

// Type is the phase of a key event
type Type string

const (
	KeyDown Type = "keydown"
	KeyUp   Type = "keyup"
)

// Event is a single keyboard event as seen by page listeners. It carries
// the legacy numeric KeyCode next to the Key name because chord tables
// may match on either.
type Event struct {
	Type    Type   `json:"type"`
	Key     string `json:"key"`
	KeyCode int    `json:"keyCode,omitempty"`
	Ctrl    bool   `json:"ctrlKey"`
	Shift   bool   `json:"shiftKey"`
	Alt     bool   `json:"altKey"`
	Meta    bool   `json:"metaKey"`

	// Trusted is false for events synthesized by scripts
	Trusted bool `json:"isTrusted"`

	defaultPrevented     bool
	propagationStopped   bool
	immediatelyCancelled bool
}

// New builds a trusted event of the given type
func New(t Type, key string, keyCode int) *Event {
	return &Event{Type: t, Key: key, KeyCode: keyCode, Trusted: true}
}

// WithModifiers returns the event after setting its modifier flags
func (e *Event) WithModifiers(ctrl, shift, alt, meta bool) *Event {
	e.Ctrl, e.Shift, e.Alt, e.Meta = ctrl, shift, alt, meta
	return e
}

// Release returns the key-up counterpart of a key-down event
func (e *Event) Release() *Event {
	return &Event{
		Type:    KeyUp,
		Key:     e.Key,
		KeyCode: e.KeyCode,
		Ctrl:    e.Ctrl,
		Shift:   e.Shift,
		Alt:     e.Alt,
		Meta:    e.Meta,
		Trusted: e.Trusted,
	}
}

// PreventDefault cancels the host's default handling of the event
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// StopPropagation keeps the event from reaching listeners in later phases
func (e *Event) StopPropagation() {
	e.propagationStopped = true
}

// StopImmediatePropagation also skips the remaining listeners of the current phase
func (e *Event) StopImmediatePropagation() {
	e.propagationStopped = true
	e.immediatelyCancelled = true
}

func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

func (e *Event) PropagationStopped() bool {
	return e.propagationStopped
}

func (e *Event) ImmediatePropagationStopped() bool {
	return e.immediatelyCancelled
}

// Consumed reports whether any listener suppressed the event
func (e *Event) Consumed() bool {
	return e.defaultPrevented || e.propagationStopped
}

// Stop fully suppresses an event: no default action, no further listeners
// in any phase.
func Stop(e *Event) {
	if e == nil {
		return
	}
	e.PreventDefault()
	e.StopPropagation()
	e.StopImmediatePropagation()
}

// IsModifierOnly reports whether the event is a bare Shift, Control, Alt or
// Meta press. Such events never form a chord on their own.
func (e *Event) IsModifierOnly() bool {
	switch e.KeyCode {
	case CodeShift, CodeControl, CodeAlt, CodeMeta, CodeOSLeft, CodeOSRight:
		return true
	}
	switch e.Key {
	case "Shift", "Control", "Alt", "AltGraph", "Meta", "OS":
		return true
	}
	return false
}

// String renders the event in the same notation bubbles/key bindings use,
// e.g. "down", "shift+tab", "ctrl+g", "alt+x". Letters keep their case and
// carry no shift prefix.
func (e *Event) String() string {
	name, named := e.keyName()

	var sb strings.Builder
	if e.Alt {
		sb.WriteString("alt+")
	}
	if e.Ctrl {
		sb.WriteString("ctrl+")
	}
	if e.Meta {
		sb.WriteString("meta+")
	}
	if e.Shift && named {
		sb.WriteString("shift+")
	}
	sb.WriteString(name)
	return sb.String()
}

// keyName resolves the binding name of the base key and whether it is a
// named (non-printable) key.
func (e *Event) keyName() (string, bool) {
	if name, ok := codeNames[e.KeyCode]; ok {
		return name, name != " "
	}
	if name, ok := domNames[e.Key]; ok {
		return name, name != " "
	}
	if e.Ctrl && len(e.Key) == 1 {
		return strings.ToLower(e.Key), false
	}
	return e.Key, false
}
