package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/tabkeys/internal/agent"
)

// Options configures the host
type Options struct {
	// ReleaseDelay is how long after a press the key-up is dispatched
	ReleaseDelay time.Duration

	// Connection and StoreLabel are shown in the status bar
	Connection string
	StoreLabel string
}

// Scheduler posts functions onto a running program's event loop. Until a
// program is attached it runs them inline.
type Scheduler struct {
	mu   sync.Mutex
	prog *tea.Program
}

// NewScheduler creates a detached scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule runs fn on the event loop
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	p := s.prog
	s.mu.Unlock()

	if p == nil {
		fn()
		return
	}
	p.Send(runMsg{fn: fn})
}

func (s *Scheduler) attach(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prog = p
}

// New creates a new TUI model for a, which must not be started yet
func New(ctx context.Context, a *agent.Agent, opts Options) Model {
	if opts.ReleaseDelay <= 0 {
		opts.ReleaseDelay = 150 * time.Millisecond
	}
	return Model{
		ctx:          ctx,
		agent:        a,
		window:       a.Window(),
		releaseDelay: opts.ReleaseDelay,
		connection:   opts.Connection,
		storeLabel:   opts.StoreLabel,
	}
}

// Run starts the TUI and blocks until the user quits or ctx is done
func Run(ctx context.Context, a *agent.Agent, sched *Scheduler, opts Options) error {
	m := New(ctx, a, opts)

	// Start TUI (pass pointer since Update uses pointer receiver)
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	sched.attach(p)
	defer sched.attach(nil)

	_, err := p.Run()
	a.Stop()
	return err
}
