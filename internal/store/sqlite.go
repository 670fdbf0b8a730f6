package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studiowebux/tabkeys/internal/migrations"
	"github.com/studiowebux/tabkeys/internal/types"
)

// SQLiteStore keeps the hotkey table in the options table and records
// every dispatched action
type SQLiteStore struct {
	db *sql.DB
}

// Dispatch is one recorded action
type Dispatch struct {
	ID        int64
	Timestamp time.Time
	Action    types.Action
	GroupID   types.GroupID
	Error     string
}

// OpenSQLite opens (or creates) the database at dbPath and migrates it
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to store database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// GetHotkeys returns the stored table, or nil when none is stored
func (s *SQLiteStore) GetHotkeys(ctx context.Context) (json.RawMessage, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM options WHERE key = ?", HotkeysKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read hotkeys: %w", err)
	}
	return json.RawMessage(value), nil
}

// SetHotkeys stores raw, which must be valid JSON
func (s *SQLiteStore) SetHotkeys(ctx context.Context, raw json.RawMessage) error {
	if !json.Valid(raw) {
		return fmt.Errorf("invalid hotkeys value: not JSON")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO options (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, HotkeysKey, string(raw))
	if err != nil {
		return fmt.Errorf("failed to save hotkeys: %w", err)
	}
	return nil
}

// ResetHotkeys deletes the stored table
func (s *SQLiteStore) ResetHotkeys(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM options WHERE key = ?", HotkeysKey); err != nil {
		return fmt.Errorf("failed to reset hotkeys: %w", err)
	}
	return nil
}

// RecordDispatch logs a dispatched action and the send error, if any
func (s *SQLiteStore) RecordDispatch(ctx context.Context, msg types.ActionMessage, sendErr error) error {
	var groupID, errText sql.NullString
	if msg.GroupID != nil && !msg.GroupID.IsZero() {
		groupID = sql.NullString{String: string(*msg.GroupID), Valid: true}
	}
	if sendErr != nil {
		errText = sql.NullString{String: sendErr.Error(), Valid: true}
	}

	timestampStr := time.Now().Local().Format("2006-01-02 15:04:05")

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO dispatches (timestamp, action, group_id, error) VALUES (?, ?, ?, ?)",
		timestampStr, string(msg.Action), groupID, errText,
	)
	if err != nil {
		return fmt.Errorf("failed to record dispatch: %w", err)
	}
	return nil
}

// RecentDispatches returns up to limit dispatches, newest first
func (s *SQLiteStore) RecentDispatches(ctx context.Context, limit int) ([]Dispatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, action, group_id, error
		FROM dispatches
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query dispatches: %w", err)
	}
	defer rows.Close()

	var out []Dispatch
	for rows.Next() {
		var (
			d         Dispatch
			timestamp string
			action    string
			groupID   sql.NullString
			errText   sql.NullString
		)
		if err := rows.Scan(&d.ID, &timestamp, &action, &groupID, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan dispatch: %w", err)
		}

		// Parse timestamp as local time
		parsed, err := time.ParseInLocation("2006-01-02 15:04:05", timestamp, time.Local)
		if err != nil {
			// the driver may hand DATETIME columns back as RFC3339
			parsed, _ = time.Parse(time.RFC3339, timestamp)
		}
		d.Timestamp = parsed
		d.Action = types.Action(action)
		d.GroupID = types.GroupID(groupID.String)
		d.Error = errText.String
		out = append(out, d)
	}

	return out, rows.Err()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
