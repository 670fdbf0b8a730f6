package keybinds

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/studiowebux/tabkeys/internal/keyevent"
	"github.com/studiowebux/tabkeys/internal/types"
)

// ErrNotArray is returned when a persisted chord table is not a JSON array
var ErrNotArray = errors.New("hotkeys value is not an array")

// Chord is one entry of the hotkey table: four modifier flags, a base key
// and the action it fires. KeyCode takes precedence over Key when set.
type Chord struct {
	Ctrl    bool           `json:"ctrlKey"`
	Shift   bool           `json:"shiftKey"`
	Alt     bool           `json:"altKey"`
	Meta    bool           `json:"metaKey"`
	KeyCode int            `json:"keyCode,omitempty"`
	Key     string         `json:"key,omitempty"`
	Action  Action         `json:"action"`
	GroupID *types.GroupID `json:"groupId,omitempty"`
}

// Matches reports whether ev is this chord. Modifiers must be equal, so a
// Ctrl chord does not match Ctrl+Shift.
func (c Chord) Matches(ev *keyevent.Event) bool {
	if c.Ctrl != ev.Ctrl || c.Shift != ev.Shift || c.Alt != ev.Alt || c.Meta != ev.Meta {
		return false
	}
	if c.KeyCode != 0 {
		return c.KeyCode == ev.KeyCode
	}
	return c.Key != "" && strings.EqualFold(c.Key, ev.Key)
}

// Overlaps reports whether every event matching o also matches c
func (c Chord) Overlaps(o Chord) bool {
	if c.Ctrl != o.Ctrl || c.Shift != o.Shift || c.Alt != o.Alt || c.Meta != o.Meta {
		return false
	}
	if c.KeyCode != 0 {
		return c.KeyCode == o.KeyCode
	}
	return c.Key != "" && o.KeyCode == 0 && strings.EqualFold(c.Key, o.Key)
}

// Message builds the controller message this chord sends
func (c Chord) Message() types.ActionMessage {
	msg := types.ActionMessage{Action: c.Action}
	if c.GroupID != nil {
		id := *c.GroupID
		msg.GroupID = &id
	}
	return msg
}

// String renders the chord as "Ctrl+Shift+G"
func (c Chord) String() string {
	var parts []string
	if c.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if c.Alt {
		parts = append(parts, "Alt")
	}
	if c.Shift {
		parts = append(parts, "Shift")
	}
	if c.Meta {
		parts = append(parts, "Meta")
	}

	switch {
	case c.Key != "" && c.Key != " ":
		r, size := utf8.DecodeRuneInString(c.Key)
		parts = append(parts, string(unicode.ToUpper(r))+c.Key[size:])
	case c.Key == " " || c.KeyCode == keyevent.CodeSpace:
		parts = append(parts, "Space")
	case c.KeyCode != 0:
		parts = append(parts, fmt.Sprintf("#%d", c.KeyCode))
	default:
		parts = append(parts, "?")
	}

	return strings.Join(parts, "+")
}

// Table is an ordered chord list; the first matching entry wins
type Table []Chord

// Match returns the first chord matching ev
func (t Table) Match(ev *keyevent.Event) (Chord, bool) {
	for _, c := range t {
		if c.Matches(ev) {
			return c, true
		}
	}
	return Chord{}, false
}

// Clone returns a deep copy of the table
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, c := range t {
		out[i] = c
		if c.GroupID != nil {
			id := *c.GroupID
			out[i].GroupID = &id
		}
	}
	return out
}

// DecodeTable decodes a persisted chord table. Entries that do not decode
// as chords are skipped rather than failing the whole table; a value that
// is not an array fails with ErrNotArray.
func DecodeTable(raw json.RawMessage) (Table, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotArray, err)
	}
	if entries == nil {
		return nil, ErrNotArray
	}

	table := make(Table, 0, len(entries))
	for _, entry := range entries {
		var c Chord
		if err := json.Unmarshal(entry, &c); err != nil {
			continue
		}
		table = append(table, c)
	}
	return table, nil
}
