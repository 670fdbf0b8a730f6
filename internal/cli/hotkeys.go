// Package cli implements the non-interactive tabkeys commands: editing and
// checking the hotkey table, running the controller and the agent, and
// reading the dispatch log.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/studiowebux/tabkeys/internal/config"
	"github.com/studiowebux/tabkeys/internal/filter"
	"github.com/studiowebux/tabkeys/internal/keybinds"
	"github.com/studiowebux/tabkeys/internal/store"
	"github.com/studiowebux/tabkeys/internal/types"
)

// OpenStore opens the hotkeys backend named by settings and returns it with
// its location
func OpenStore(s config.Settings) (store.Store, string, error) {
	path, err := s.ResolvedStorePath()
	if err != nil {
		return nil, "", err
	}
	st, err := store.Open(store.Kind(s.Store), path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s store: %w", s.Store, err)
	}
	return st, path, nil
}

// loadTable returns the stored table, or the defaults when nothing usable
// is stored
func loadTable(ctx context.Context, st store.Store) (keybinds.Table, bool, error) {
	raw, err := st.GetHotkeys(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read hotkeys: %w", err)
	}
	if raw == nil {
		return keybinds.DefaultTable(), true, nil
	}
	table, err := keybinds.DecodeTable(raw)
	if err != nil || len(table) == 0 {
		return keybinds.DefaultTable(), true, nil
	}
	return table, false, nil
}

// saveTable encodes and stores table
func saveTable(ctx context.Context, st store.Store, table keybinds.Table) error {
	raw, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to encode hotkeys: %w", err)
	}
	if err := st.SetHotkeys(ctx, raw); err != nil {
		return fmt.Errorf("failed to save hotkeys: %w", err)
	}
	return nil
}

// ListOptions controls `hotkeys list`
type ListOptions struct {
	Filter  string   // JMESPath filter expression
	Query   string   // JMESPath query or $(shell command)
	Actions []string // keep only chords bound to these actions
	JSON    bool
	Copy    bool
}

// ListHotkeys prints the active chord table
func ListHotkeys(ctx context.Context, st store.Store, w io.Writer, opts ListOptions) error {
	table, defaults, err := loadTable(ctx, st)
	if err != nil {
		return err
	}
	table = filter.ByAction(table, opts.Actions)

	var output string
	if opts.JSON || opts.Filter != "" || opts.Query != "" {
		data, err := json.MarshalIndent(table, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode hotkeys: %w", err)
		}
		output, err = filter.Apply(string(data), opts.Filter, opts.Query)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, output)
	} else {
		output = formatTable(table)
		fmt.Fprint(w, output)
		if defaults {
			subtle(w, "(default table, nothing stored)")
		}
	}

	if opts.Copy {
		if err := clipboard.WriteAll(output); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		success(w, "copied to clipboard")
	}
	return nil
}

// formatTable renders one chord per line
func formatTable(table keybinds.Table) string {
	if len(table) == 0 {
		return "no chords\n"
	}

	var sb strings.Builder
	for i, c := range table {
		group := ""
		if c.GroupID != nil {
			group = " -> " + string(*c.GroupID)
		}
		fmt.Fprintf(&sb, "%2d. %-22s %s%s\n", i+1, c.String(), c.Action, group)
	}
	return sb.String()
}

// CheckHotkeys validates the stored table. It fails when the table has
// errors; warnings are only printed.
func CheckHotkeys(ctx context.Context, st store.Store, w io.Writer) error {
	raw, err := st.GetHotkeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to read hotkeys: %w", err)
	}
	if raw == nil {
		success(w, "nothing stored, the default table is in use")
		return nil
	}

	result := keybinds.NewValidator().ValidateJSON(raw)
	for _, e := range result.Errors {
		failure(w, "%s", e.Error())
	}
	for _, e := range result.Warnings {
		warning(w, "%s", e.Error())
	}

	if result.HasErrors() {
		return fmt.Errorf("hotkey table has %d error(s)", len(result.Errors))
	}
	if !result.HasWarnings() {
		success(w, "no issues found")
	}
	return nil
}

// SetOptions describes one chord binding
type SetOptions struct {
	Chord   string
	Action  string
	GroupID string

	// Prompt asks for a missing action or group id
	Prompt bool
}

// SetHotkey binds a chord, replacing any entry the new chord overlaps
func SetHotkey(ctx context.Context, st store.Store, w io.Writer, opts SetOptions) error {
	chord, err := keybinds.ParseChord(opts.Chord)
	if err != nil {
		return err
	}

	action := keybinds.Action(opts.Action)
	if action == "" {
		if !opts.Prompt {
			return fmt.Errorf("no action given for %s", chord.String())
		}
		if action, err = promptForAction(chord.String()); err != nil {
			return err
		}
	}
	if !keybinds.IsKnownAction(action) {
		warning(w, "%q is not a known action, binding it anyway", action)
	}
	chord.Action = action

	if keybinds.NeedsGroup(action) {
		id := opts.GroupID
		if id == "" && opts.Prompt {
			if id, err = promptForValue(os.Stdin, w, "group id"); err != nil {
				return err
			}
		}
		if id == "" {
			return fmt.Errorf("%s needs a group id", action)
		}
		gid := types.GroupID(id)
		chord.GroupID = &gid
	} else if opts.GroupID != "" {
		warning(w, "%s takes no group id, ignoring %q", action, opts.GroupID)
	}

	table, _, err := loadTable(ctx, st)
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range table {
		if chord.Overlaps(existing) || existing.Overlaps(chord) {
			table[i] = chord
			replaced = true
			break
		}
	}
	if !replaced {
		table = append(table, chord)
	}

	if err := saveTable(ctx, st, table); err != nil {
		return err
	}
	success(w, "%s -> %s", chord.String(), action)
	return nil
}

// RemoveHotkey unbinds every entry overlapping the chord
func RemoveHotkey(ctx context.Context, st store.Store, w io.Writer, spec string) error {
	chord, err := keybinds.ParseChord(spec)
	if err != nil {
		return err
	}

	table, _, err := loadTable(ctx, st)
	if err != nil {
		return err
	}

	kept := make(keybinds.Table, 0, len(table))
	for _, existing := range table {
		if chord.Overlaps(existing) || existing.Overlaps(chord) {
			continue
		}
		kept = append(kept, existing)
	}
	if len(kept) == len(table) {
		return fmt.Errorf("%s is not bound", chord.String())
	}

	if err := saveTable(ctx, st, kept); err != nil {
		return err
	}
	success(w, "removed %s", chord.String())
	if len(kept) == 0 {
		warning(w, "table is empty, the default table will be used")
	}
	return nil
}

// ResetHotkeys drops the stored table so the defaults apply again
func ResetHotkeys(ctx context.Context, st store.Store, w io.Writer) error {
	if err := st.ResetHotkeys(ctx); err != nil {
		return fmt.Errorf("failed to reset hotkeys: %w", err)
	}
	success(w, "hotkeys reset to defaults")
	return nil
}
