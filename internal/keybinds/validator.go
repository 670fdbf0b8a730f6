package keybinds

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/studiowebux/tabkeys/internal/keyevent"
)

// ValidationError represents a chord table validation error
type ValidationError struct {
	Type    string // "conflict", "invalid", "warning"
	Index   int    // position of the entry in the table, 1-based
	Chord   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] #%d %s: %s", e.Type, e.Index, e.Chord, e.Message)
}

// ValidationResult contains all validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warnings
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of validation results
func (r *ValidationResult) String() string {
	var sb strings.Builder

	if len(r.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("Errors (%d):\n", len(r.Errors)))
		for _, err := range r.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
		}
	}

	if len(r.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("Warnings (%d):\n", len(r.Warnings)))
		for _, warn := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn.Error()))
		}
	}

	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}

	return sb.String()
}

// Validator checks chord tables for entries that can never fire or that
// fight with the browser. It is advisory: the matcher installs tables as
// they are.
type Validator struct {
	// reservedChords are chords the browser handles before any page sees them
	reservedChords map[string]bool
}

// NewValidator creates a new chord table validator
func NewValidator() *Validator {
	return &Validator{
		reservedChords: map[string]bool{
			"Ctrl+W":         true,
			"Ctrl+T":         true,
			"Ctrl+N":         true,
			"Ctrl+Q":         true,
			"Ctrl+Shift+W":   true,
			"Ctrl+Shift+T":   true,
			"Ctrl+Shift+N":   true,
			"Ctrl+Tab":       true,
			"Ctrl+Shift+Tab": true,
		},
	}
}

// ValidateTable validates an entire chord table
func (v *Validator) ValidateTable(table Table) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	for i, c := range table {
		v.checkKey(i, c, result)
		v.checkAction(i, c, result)
		v.checkReserved(i, c, result)
	}

	v.checkShadowing(table, result)

	return result
}

// ValidateJSON validates a persisted table before it is decoded
func (v *Validator) ValidateJSON(raw json.RawMessage) *ValidationResult {
	table, err := DecodeTable(raw)
	if err != nil {
		return &ValidationResult{
			Errors: []ValidationError{{
				Type:    "invalid",
				Message: err.Error() + " (the default table will be used)",
			}},
			Warnings: []ValidationError{},
		}
	}

	result := v.ValidateTable(table)
	if len(table) == 0 {
		result.Warnings = append(result.Warnings, ValidationError{
			Type:    "warning",
			Message: "table is empty (the default table will be used)",
		})
	}
	return result
}

// checkKey reports entries without a usable base key
func (v *Validator) checkKey(i int, c Chord, result *ValidationResult) {
	if c.KeyCode == 0 && c.Key == "" {
		result.Errors = append(result.Errors, ValidationError{
			Type:    "invalid",
			Index:   i + 1,
			Chord:   c.String(),
			Message: "neither keyCode nor key is set",
		})
		return
	}

	probe := keyevent.New(keyevent.KeyDown, c.Key, c.KeyCode)
	if probe.IsModifierOnly() {
		result.Warnings = append(result.Warnings, ValidationError{
			Type:    "warning",
			Index:   i + 1,
			Chord:   c.String(),
			Message: "base key is a modifier, this entry never matches",
		})
	}
}

// checkAction reports unknown actions and missing group ids
func (v *Validator) checkAction(i int, c Chord, result *ValidationResult) {
	if c.Action == "" {
		result.Errors = append(result.Errors, ValidationError{
			Type:    "invalid",
			Index:   i + 1,
			Chord:   c.String(),
			Message: "action cannot be empty",
		})
		return
	}

	if !IsKnownAction(c.Action) {
		result.Errors = append(result.Errors, ValidationError{
			Type:    "invalid",
			Index:   i + 1,
			Chord:   c.String(),
			Message: fmt.Sprintf("unknown action %q", c.Action),
		})
		return
	}

	if NeedsGroup(c.Action) && (c.GroupID == nil || c.GroupID.IsZero()) {
		result.Errors = append(result.Errors, ValidationError{
			Type:    "invalid",
			Index:   i + 1,
			Chord:   c.String(),
			Message: fmt.Sprintf("action %q needs a groupId", c.Action),
		})
	}
}

// checkReserved warns about chords the browser keeps for itself
func (v *Validator) checkReserved(i int, c Chord, result *ValidationResult) {
	if v.reservedChords[c.String()] {
		result.Warnings = append(result.Warnings, ValidationError{
			Type:    "warning",
			Index:   i + 1,
			Chord:   c.String(),
			Message: "reserved by the browser (may never reach the page)",
		})
	}
}

// checkShadowing reports entries hidden by an earlier entry; first match
// wins, so they can never fire
func (v *Validator) checkShadowing(table Table, result *ValidationResult) {
	for j := 1; j < len(table); j++ {
		for i := 0; i < j; i++ {
			if !table[i].Overlaps(table[j]) {
				continue
			}

			typ := "warning"
			if table[i].Action != table[j].Action {
				typ = "conflict"
			}

			entry := ValidationError{
				Type:    typ,
				Index:   j + 1,
				Chord:   table[j].String(),
				Message: fmt.Sprintf("shadowed by #%d (%s), never fires", i+1, table[i].Action),
			}
			if typ == "conflict" {
				result.Errors = append(result.Errors, entry)
			} else {
				result.Warnings = append(result.Warnings, entry)
			}
			break
		}
	}
}
