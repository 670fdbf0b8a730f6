package controller

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/tabkeys/internal/types"
)

// GroupRecord is a group as kept by the controller
type GroupRecord struct {
	ID      int    `yaml:"id"`
	Title   string `yaml:"title"`
	IconURL string `yaml:"iconUrl,omitempty"`
	Tabs    int    `yaml:"tabs"`
}

// Group converts the record to its wire form
func (r GroupRecord) Group() types.Group {
	return types.Group{
		ID:      types.GroupIDFromInt(r.ID),
		Title:   r.Title,
		IconURL: r.IconURL,
	}
}

// GroupsFile is the YAML document the controller persists its groups in
type GroupsFile struct {
	Active int           `yaml:"active"`
	Groups []GroupRecord `yaml:"groups"`
}

// DefaultGroups is used when no groups file exists
func DefaultGroups() GroupsFile {
	return GroupsFile{
		Active: 1,
		Groups: []GroupRecord{
			{ID: 1, Title: "Unnamed", Tabs: 1},
		},
	}
}

// LoadGroups reads the groups file at path. A missing file yields
// DefaultGroups.
func LoadGroups(path string) (GroupsFile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultGroups(), nil
	}
	if err != nil {
		return GroupsFile{}, fmt.Errorf("failed to read groups file: %w", err)
	}

	var doc GroupsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return GroupsFile{}, fmt.Errorf("failed to parse groups file %s: %w", path, err)
	}
	if len(doc.Groups) == 0 {
		return DefaultGroups(), nil
	}

	seen := make(map[int]bool, len(doc.Groups))
	for _, g := range doc.Groups {
		if g.ID <= 0 {
			return GroupsFile{}, fmt.Errorf("groups file %s: group %q has invalid id %d", path, g.Title, g.ID)
		}
		if seen[g.ID] {
			return GroupsFile{}, fmt.Errorf("groups file %s: duplicate group id %d", path, g.ID)
		}
		seen[g.ID] = true
	}
	if !seen[doc.Active] {
		doc.Active = doc.Groups[0].ID
	}

	return doc, nil
}

// SaveGroups writes doc to path
func SaveGroups(path string, doc GroupsFile) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode groups: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create groups directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write groups file: %w", err)
	}
	return nil
}
