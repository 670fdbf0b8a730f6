package picker

// Message ids looked up through a Localizer
const (
	MsgTitle     = "picker.title"
	MsgCreateNew = "picker.createNew"
	MsgFilter    = "picker.filter"
	MsgNoMatches = "picker.noMatches"
	MsgCurrent   = "picker.current"
)

// Localizer resolves user-facing text
type Localizer interface {
	Message(id string) string
}

// Messages is a Localizer backed by a map. Missing ids fall back to the
// English defaults, then to the id itself.
type Messages map[string]string

// DefaultMessages are the English texts
var DefaultMessages = Messages{
	MsgTitle:     "Move tab to group",
	MsgCreateNew: "Create new group",
	MsgFilter:    "type to filter",
	MsgNoMatches: "no matching groups",
	MsgCurrent:   "current",
}

func (m Messages) Message(id string) string {
	if s, ok := m[id]; ok {
		return s
	}
	if s, ok := DefaultMessages[id]; ok {
		return s
	}
	return id
}
