package keybinds

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/studiowebux/tabkeys/internal/keyevent"
	"github.com/studiowebux/tabkeys/internal/page"
	"github.com/studiowebux/tabkeys/internal/types"
)

// DefaultSendTimeout bounds how long a dispatch goroutine waits for the
// controller. The match guard itself is released by the next key-up.
const DefaultSendTimeout = 30 * time.Second

// ConfigStore reads the persisted chord table. A nil value means nothing
// has been stored.
type ConfigStore interface {
	GetHotkeys(ctx context.Context) (json.RawMessage, error)
}

// ActionChannel delivers a matched action to the controller and waits for
// its acknowledgment
type ActionChannel interface {
	Send(ctx context.Context, msg types.ActionMessage) (types.ActionReply, error)
}

// Matcher turns key-down events into controller actions using a
// hot-swappable chord table. At most one dispatch is in flight at a time:
// the guard is set on a match and cleared by the acknowledgment or by the
// next key-up, whichever comes first.
type Matcher struct {
	mu sync.Mutex

	window  *page.Window
	store   ConfigStore
	channel ActionChannel

	table Table
	guard bool

	keyDownID page.ListenerID
	keyUpID   page.ListenerID
	attached  bool
	tornDown  bool
	hooks     []func()

	schedule    func(func())
	sendTimeout time.Duration
	onDispatch  func(types.ActionMessage, error)
	logger      *slog.Logger
}

// Option configures a Matcher
type Option func(*Matcher)

// WithScheduler runs asynchronous completions (reload results and
// acknowledgments) through fn, typically to get back onto the host's event
// loop. The default runs them on the calling goroutine.
func WithScheduler(fn func(func())) Option {
	return func(m *Matcher) {
		m.schedule = fn
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) {
		m.logger = l
	}
}

// WithSendTimeout overrides DefaultSendTimeout
func WithSendTimeout(d time.Duration) Option {
	return func(m *Matcher) {
		m.sendTimeout = d
	}
}

// WithDispatchObserver calls fn after every send with the message and the
// send error, if any. It runs on the dispatch goroutine.
func WithDispatchObserver(fn func(types.ActionMessage, error)) Option {
	return func(m *Matcher) {
		m.onDispatch = fn
	}
}

// NewMatcher creates a matcher with an empty table. Call Reload to install
// the persisted table and attach the window listeners.
func NewMatcher(window *page.Window, store ConfigStore, channel ActionChannel, opts ...Option) *Matcher {
	m := &Matcher{
		window:      window,
		store:       store,
		channel:     channel,
		schedule:    func(fn func()) { fn() },
		sendTimeout: DefaultSendTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Configure replaces the active table. Entries are not validated; broken
// entries simply never match.
func (m *Matcher) Configure(table Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table = table.Clone()
}

// Table returns a copy of the active table
func (m *Matcher) Table() Table {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.Clone()
}

// Reload fetches the persisted table and installs it, or the default table
// when nothing usable is stored, then re-establishes the window listeners.
// It returns the table it installs.
func (m *Matcher) Reload(ctx context.Context) Table {
	table := m.fetch(ctx)

	m.schedule(func() {
		m.Configure(table)
		m.Attach()
	})

	return table
}

func (m *Matcher) fetch(ctx context.Context) Table {
	if m.store == nil {
		return DefaultTable()
	}

	raw, err := m.store.GetHotkeys(ctx)
	if err != nil {
		m.logger.Debug("[HOTKEY] reading stored hotkeys failed, using defaults", "error", err)
		return DefaultTable()
	}
	if raw == nil {
		return DefaultTable()
	}

	table, err := DecodeTable(raw)
	if err != nil || len(table) == 0 {
		m.logger.Debug("[HOTKEY] stored hotkeys unusable, using defaults", "error", err)
		return DefaultTable()
	}

	return table
}

// Attach removes any window listeners the matcher holds and adds fresh
// ones when the table is non-empty. A torn down matcher never re-attaches.
func (m *Matcher) Attach() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.detachLocked()
	if m.tornDown || len(m.table) == 0 || m.window == nil {
		return
	}

	m.keyDownID = m.window.AddEventListener(keyevent.KeyDown, m.OnKeyDown, page.Options{})
	m.keyUpID = m.window.AddEventListener(keyevent.KeyUp, m.OnKeyUp, page.Options{})
	m.attached = true
}

func (m *Matcher) detachLocked() {
	if !m.attached {
		return
	}
	m.window.RemoveEventListener(m.keyDownID)
	m.window.RemoveEventListener(m.keyUpID)
	m.attached = false
}

// Attached reports whether the window listeners are installed
func (m *Matcher) Attached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attached
}

// Guarded reports whether a dispatch is in flight
func (m *Matcher) Guarded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.guard
}

// OnKeyDown matches ev against the table and dispatches the first match
func (m *Matcher) OnKeyDown(ev *keyevent.Event) {
	if !ev.Trusted || ev.IsModifierOnly() {
		return
	}

	m.mu.Lock()
	if m.guard || m.tornDown {
		m.mu.Unlock()
		return
	}
	chord, ok := m.table.Match(ev)
	if !ok {
		m.mu.Unlock()
		return
	}
	m.guard = true
	m.mu.Unlock()

	keyevent.Stop(ev)

	msg := chord.Message()
	m.logger.Debug("[HOTKEY] matched", "chord", chord.String(), "action", msg.Action)

	go m.dispatch(msg)
}

func (m *Matcher) dispatch(msg types.ActionMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), m.sendTimeout)
	defer cancel()

	reply, err := m.channel.Send(ctx, msg)
	if m.onDispatch != nil {
		m.onDispatch(msg, err)
	}
	if err != nil {
		// no acknowledgment; the next key-up releases the guard
		m.logger.Warn("[HOTKEY] dispatch failed", "action", msg.Action, "error", err)
		return
	}

	m.schedule(func() {
		m.acknowledge(reply)
	})
}

func (m *Matcher) acknowledge(reply types.ActionReply) {
	m.mu.Lock()
	m.guard = false
	m.mu.Unlock()

	if reply.Unsubscribe {
		m.logger.Info("[HOTKEY] controller asked to unsubscribe")
		m.Teardown()
	}
}

// OnKeyUp releases the guard
func (m *Matcher) OnKeyUp(ev *keyevent.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guard = false
}

// OnTeardown registers fn to run when the matcher is torn down
func (m *Matcher) OnTeardown(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, fn)
}

// Teardown removes the window listeners and runs the teardown hooks. Only
// the first call has any effect.
func (m *Matcher) Teardown() {
	m.mu.Lock()
	if m.tornDown {
		m.mu.Unlock()
		return
	}
	m.tornDown = true
	m.detachLocked()
	hooks := m.hooks
	m.hooks = nil
	m.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// TornDown reports whether Teardown has run
func (m *Matcher) TornDown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tornDown
}
