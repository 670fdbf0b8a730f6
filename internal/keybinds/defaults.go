package keybinds

import (
	"github.com/studiowebux/tabkeys/internal/keyevent"
)

// DefaultTable returns the built-in chord table used when no valid table
// has been persisted
func DefaultTable() Table {
	return Table{
		{
			Ctrl:    true,
			KeyCode: keyevent.CodeBackQuote,
			Key:     "`",
			Action:  ActionLoadNextGroup,
		},
		{
			Ctrl:    true,
			Shift:   true,
			KeyCode: keyevent.CodeBackQuote,
			Key:     "`",
			Action:  ActionLoadPrevGroup,
		},
	}
}
