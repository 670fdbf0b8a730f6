// Package store persists the hotkey table. FileStore keeps it in a JSON,
// JSONC, YAML or TOML document; SQLiteStore keeps it in an options table
// together with a log of dispatched actions.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// HotkeysKey is the document key (and options row) holding the table
const HotkeysKey = "hotkeys"

var ErrUnsupportedFormat = errors.New("unsupported hotkeys file format")

// Store reads and writes the persisted chord table. GetHotkeys returns nil
// when nothing is stored.
type Store interface {
	GetHotkeys(ctx context.Context) (json.RawMessage, error)
	SetHotkeys(ctx context.Context, raw json.RawMessage) error
	ResetHotkeys(ctx context.Context) error
	Close() error
}

// Kind selects a Store implementation
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
)

// Open creates the store of the given kind at path
func Open(kind Kind, path string) (Store, error) {
	switch kind {
	case KindSQLite:
		return OpenSQLite(path)
	case KindFile, "":
		return NewFileStore(path)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

// Format is the syntax of a hotkeys file
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonc":
		return FormatJSONC, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
