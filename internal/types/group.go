package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// GroupID identifies a tab group. Controllers use numeric ids; the picker
// uses the NewGroupID sentinel for the "create new group" entry.
type GroupID string

// NewGroupID asks the controller to create a group for the tab
const NewGroupID GroupID = "new"

// IsZero reports whether the id is unset
func (g GroupID) IsZero() bool {
	return g == ""
}

// IsNew reports whether the id is the create-group sentinel
func (g GroupID) IsNew() bool {
	return g == NewGroupID
}

// Int returns the numeric form of the id, if it has one
func (g GroupID) Int() (int, bool) {
	n, err := strconv.Atoi(string(g))
	if err != nil {
		return 0, false
	}
	return n, true
}

// GroupIDFromInt builds a numeric group id
func GroupIDFromInt(n int) GroupID {
	return GroupID(strconv.Itoa(n))
}

// MarshalJSON writes canonical integer ids as JSON numbers and everything
// else, such as "007" or "+5", as strings so it decodes back unchanged
func (g GroupID) MarshalJSON() ([]byte, error) {
	if n, ok := g.Int(); ok && strconv.Itoa(n) == string(g) {
		return []byte(string(g)), nil
	}
	return json.Marshal(string(g))
}

// UnmarshalJSON accepts a JSON number, a string, or null
func (g *GroupID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*g = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = GroupID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid group id %s: %w", data, err)
	}
	*g = GroupID(n.String())
	return nil
}

// Group is a tab group as shown in the picker
type Group struct {
	ID      GroupID `json:"id" yaml:"id"`
	Title   string  `json:"title" yaml:"title"`
	IconURL string  `json:"iconUrl,omitempty" yaml:"iconUrl,omitempty"`
}
