package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// FileStore keeps the hotkey table under the "hotkeys" key of a document
// file. Other keys in the document are preserved on write.
type FileStore struct {
	mu     sync.Mutex
	path   string
	format Format
}

// NewFileStore creates a store for path; the format follows the extension
func NewFileStore(path string) (*FileStore, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	return &FileStore{path: path, format: format}, nil
}

// Path returns the document path
func (s *FileStore) Path() string {
	return s.path
}

// Format returns the document syntax
func (s *FileStore) Format() Format {
	return s.format
}

// GetHotkeys returns the raw "hotkeys" value as JSON. A missing file or key
// yields nil.
func (s *FileStore) GetHotkeys(ctx context.Context) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return nil, err
	}

	value, ok := doc[HotkeysKey]
	if !ok {
		return nil, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode hotkeys: %w", err)
	}
	return raw, nil
}

// SetHotkeys stores raw, which must be valid JSON, under the "hotkeys" key
func (s *FileStore) SetHotkeys(ctx context.Context, raw json.RawMessage) error {
	value, err := decodeValue(raw)
	if err != nil {
		return fmt.Errorf("invalid hotkeys value: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return err
	}
	doc[HotkeysKey] = value

	return s.writeDocument(doc)
}

// ResetHotkeys removes the "hotkeys" key so the defaults apply again
func (s *FileStore) ResetHotkeys(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return err
	}
	if _, ok := doc[HotkeysKey]; !ok {
		return nil
	}
	delete(doc, HotkeysKey)

	return s.writeDocument(doc)
}

// Close is a no-op
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) readDocument() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read hotkeys file: %w", err)
	}

	doc := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	switch s.format {
	case FormatJSON, FormatJSONC:
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.UseNumber()
		err = dec.Decode(&doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s hotkeys file: %w", s.format, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	return doc, nil
}

func (s *FileStore) writeDocument(doc map[string]any) error {
	var (
		data []byte
		err  error
	)

	switch s.format {
	case FormatJSON, FormatJSONC:
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	case FormatYAML:
		data, err = yaml.Marshal(doc)
	case FormatTOML:
		data, err = toml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s hotkeys file: %w", s.format, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create hotkeys directory: %w", err)
	}

	// write to a temp file and rename so watchers never see a partial file
	tmp, err := os.CreateTemp(dir, ".hotkeys-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write hotkeys file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write hotkeys file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace hotkeys file: %w", err)
	}

	return nil
}

// decodeValue parses JSON into plain Go values with integral numbers as
// int64, so YAML and TOML encoders write 7 rather than 7.0
func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return normalize(value), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalize(t[k])
		}
		return t
	default:
		return v
	}
}
