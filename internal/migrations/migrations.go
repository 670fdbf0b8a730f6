// Package migrations creates and upgrades the tabkeys SQLite schema
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is one versioned schema step. Down may be empty when a step
// cannot be reverted.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// All lists every migration, oldest first
var All = []Migration{
	{
		Version: 1,
		Name:    "options table",
		Up: `
			CREATE TABLE IF NOT EXISTS options (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
		`,
		Down: `DROP TABLE IF EXISTS options;`,
	},
	{
		Version: 2,
		Name:    "dispatch log",
		Up: `
			CREATE TABLE IF NOT EXISTS dispatches (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp DATETIME NOT NULL,
				action TEXT NOT NULL,
				group_id TEXT,
				error TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_dispatches_timestamp ON dispatches(timestamp DESC);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_dispatches_timestamp;
			DROP TABLE IF EXISTS dispatches;
		`,
	},
	{
		Version: 3,
		Name:    "rename legacy keybinds row",
		Up: `
			INSERT OR IGNORE INTO options (key, value, updated_at)
				SELECT 'hotkeys', value, updated_at FROM options WHERE key = 'keybinds';
			DELETE FROM options WHERE key = 'keybinds';
		`,
	},
}

const ledger = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

// Run applies every pending migration
func Run(db *sql.DB) error {
	return MigrateTo(context.Background(), db, All[len(All)-1].Version)
}

// MigrateTo moves the schema up or down to target. Each step commits on
// its own, so a failure leaves the schema at the last good version.
func MigrateTo(ctx context.Context, db *sql.DB, target int) error {
	if _, err := db.ExecContext(ctx, ledger); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := Version(ctx, db)
	if err != nil {
		return err
	}

	if target >= current {
		for _, m := range All {
			if m.Version > current && m.Version <= target {
				if err := step(ctx, db, m, true); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for i := len(All) - 1; i >= 0; i-- {
		m := All[i]
		if m.Version <= current && m.Version > target {
			if err := step(ctx, db, m, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// step applies or reverts one migration inside a transaction
func step(ctx context.Context, db *sql.DB, m Migration, up bool) error {
	script, record := m.Up, "INSERT INTO schema_migrations (version, name) VALUES (?, ?)"
	args := []any{m.Version, m.Name}
	if !up {
		if m.Down == "" {
			return fmt.Errorf("migration %d (%s) cannot be reverted", m.Version, m.Name)
		}
		script, record = m.Down, "DELETE FROM schema_migrations WHERE version = ?"
		args = args[:1]
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
	}
	return tx.Commit()
}

// Version returns the highest applied migration, 0 for a fresh database
func Version(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}
