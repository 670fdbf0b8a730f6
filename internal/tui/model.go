package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/tabkeys/internal/agent"
	"github.com/studiowebux/tabkeys/internal/keyevent"
	"github.com/studiowebux/tabkeys/internal/page"
)

// runMsg carries a scheduled function onto the event loop
type runMsg struct {
	fn func()
}

// releaseMsg delivers the synthesized key-up for an earlier press
type releaseMsg struct {
	ev *keyevent.Event
}

// agentStartedMsg reports the result of starting the agent
type agentStartedMsg struct {
	err error
}

// Model represents the TUI state
type Model struct {
	ctx    context.Context
	agent  *agent.Agent
	window *page.Window

	releaseDelay time.Duration
	connection   string
	storeLabel   string

	width  int
	height int

	lastKey  string
	lastUsed bool // whether a listener consumed the last key
	errorMsg string
	started  bool
	quitting bool
}

// Init starts the agent off the event loop so its scheduled completions
// can be delivered
func (m *Model) Init() tea.Cmd {
	ctx, a := m.ctx, m.agent
	return func() tea.Msg {
		return agentStartedMsg{err: a.Start(ctx)}
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyPress(msg)

	case releaseMsg:
		m.window.Dispatch(msg.ev)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case runMsg:
		msg.fn()

	case agentStartedMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
		} else {
			m.started = true
		}
	}

	return m, nil
}

// handleKeyPress dispatches the press on the window and schedules its
// release. ctrl+c always quits; q quits when nothing consumed it.
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return tea.Quit
	}

	ev := keyevent.FromTea(msg)
	m.lastKey = ev.String()
	m.lastUsed = !m.window.Dispatch(ev)

	if !m.lastUsed && msg.String() == "q" {
		m.quitting = true
		return tea.Quit
	}

	release := ev.Release()
	return tea.Tick(m.releaseDelay, func(time.Time) tea.Msg {
		return releaseMsg{ev: release}
	})
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := m.agent.Picker()
	if p == nil {
		return
	}

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		p.Click(msg.X, msg.Y)
	case msg.Action == tea.MouseActionMotion:
		p.Hover(msg.X, msg.Y)
	}
}
