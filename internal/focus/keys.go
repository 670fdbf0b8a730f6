package focus

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/studiowebux/tabkeys/internal/keyevent"
)

// Intent is what a key means inside the modal list, independent of which
// key produced it
type Intent int

const (
	IntentNone Intent = iota
	IntentNext
	IntentPrev
	IntentFirst
	IntentLast
	IntentActivate
	IntentClose
)

func (i Intent) String() string {
	switch i {
	case IntentNext:
		return "next"
	case IntentPrev:
		return "prev"
	case IntentFirst:
		return "first"
	case IntentLast:
		return "last"
	case IntentActivate:
		return "activate"
	case IntentClose:
		return "close"
	default:
		return "none"
	}
}

// KeyMap groups the keys of each navigation intent
type KeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	First    key.Binding
	Last     key.Binding
	Activate key.Binding
	Close    key.Binding
}

// DefaultKeyMap returns the modal list bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("down", "tab"),
			key.WithHelp("↓/tab", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("up", "shift+tab"),
			key.WithHelp("↑/shift+tab", "prev"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "pgup"),
			key.WithHelp("home", "first"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "pgdown"),
			key.WithHelp("end", "last"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "move here"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
	}
}

// Classify maps a key-down event to its intent
func (k KeyMap) Classify(ev *keyevent.Event) Intent {
	switch {
	case key.Matches(ev, k.Next):
		return IntentNext
	case key.Matches(ev, k.Prev):
		return IntentPrev
	case key.Matches(ev, k.First):
		return IntentFirst
	case key.Matches(ev, k.Last):
		return IntentLast
	case key.Matches(ev, k.Activate):
		return IntentActivate
	case key.Matches(ev, k.Close):
		return IntentClose
	}
	return IntentNone
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Activate, k.Close}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.First, k.Last},
		{k.Activate, k.Close},
	}
}
