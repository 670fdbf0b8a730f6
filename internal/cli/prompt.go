package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/tabkeys/internal/keybinds"
)

var errCancelled = errors.New("selection cancelled")

type actionItem struct {
	action  keybinds.Action
	label   string
	needsID bool
}

func (i actionItem) FilterValue() string { return string(i.action) + " " + i.label }
func (i actionItem) Title() string       { return i.label }

func (i actionItem) Description() string {
	if i.needsID {
		return string(i.action) + " (needs a group id)"
	}
	return string(i.action)
}

type selectorKeys struct {
	choose key.Binding
	custom key.Binding
	cancel key.Binding
}

var pickKeys = selectorKeys{
	choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "bind")),
	custom: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "custom action")),
	cancel: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "cancel")),
}

// actionSelector lets the user pick the action a chord binds to
type actionSelector struct {
	list   list.Model
	chosen keybinds.Action
	custom bool
	done   bool
}

func (m actionSelector) Init() tea.Cmd {
	return nil
}

func (m actionSelector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, min(msg.Height, 20))
		return m, nil

	case tea.KeyMsg:
		// while the filter is typed every key belongs to it
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, pickKeys.cancel):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, pickKeys.choose):
			if it, ok := m.list.SelectedItem().(actionItem); ok {
				m.chosen = it.action
			}
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, pickKeys.custom):
			m.custom = true
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m actionSelector) View() string {
	if m.done {
		return ""
	}
	return m.list.View()
}

// newActionList lists every known action for chord
func newActionList(chord string) list.Model {
	actions := keybinds.AllActions()
	items := make([]list.Item, len(actions))
	for i, a := range actions {
		items[i] = actionItem{action: a, label: keybinds.Describe(a), needsID: keybinds.NeedsGroup(a)}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("170")).BorderForeground(lipgloss.Color("170"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(lipgloss.Color("241")).BorderForeground(lipgloss.Color("170"))

	l := list.New(items, delegate, 80, 20)
	l.Title = "Bind " + chord + " to"
	l.Styles.Title = lipgloss.NewStyle().Bold(true).MarginLeft(2)
	l.SetShowStatusBar(false)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{pickKeys.choose, pickKeys.custom, pickKeys.cancel}
	}
	return l
}

// promptForAction runs the selector for chord. Choosing "custom" reads
// a free-form action name from stdin.
func promptForAction(chord string) (keybinds.Action, error) {
	final, err := tea.NewProgram(actionSelector{list: newActionList(chord)}).Run()
	if err != nil {
		return "", fmt.Errorf("error running selector: %w", err)
	}

	result := final.(actionSelector)
	switch {
	case result.custom:
		name, err := promptForValue(os.Stdin, os.Stdout, "action")
		return keybinds.Action(name), err
	case result.chosen == "":
		return "", errCancelled
	default:
		return result.chosen, nil
	}
}

// promptForValue reads one non-empty line from in
func promptForValue(in io.Reader, out io.Writer, name string) (string, error) {
	fmt.Fprintf(out, "%s: ", name)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	if line = strings.TrimSpace(line); line == "" {
		return "", fmt.Errorf("no %s entered", name)
	}
	return line, nil
}

// IsInteractive reports whether stdin is a terminal rather than a pipe
func IsInteractive() bool {
	stat, err := os.Stdin.Stat()
	return err == nil && stat.Mode()&os.ModeCharDevice != 0
}
