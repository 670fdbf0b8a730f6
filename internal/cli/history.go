package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/studiowebux/tabkeys/internal/store"
)

// DefaultHistoryLimit is how many dispatches `history` shows by default
const DefaultHistoryLimit = 20

// ShowHistory prints the most recent dispatched actions, newest first
func ShowHistory(ctx context.Context, dbPath string, w io.Writer, limit int) error {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	db, err := store.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.RecentDispatches(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		subtle(w, "no actions dispatched yet")
		return nil
	}

	for _, d := range entries {
		line := fmt.Sprintf("%s  %s", d.Timestamp.Local().Format("2006-01-02 15:04:05"), d.Action)
		if d.GroupID != "" {
			line += " -> " + string(d.GroupID)
		}
		if d.Error != "" {
			failure(w, "%s (%s)", line, d.Error)
			continue
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
