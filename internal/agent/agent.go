// Package agent wires the hotkey matcher, the group picker and the
// controller connection onto one page window.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/studiowebux/tabkeys/internal/keybinds"
	"github.com/studiowebux/tabkeys/internal/messaging"
	"github.com/studiowebux/tabkeys/internal/page"
	"github.com/studiowebux/tabkeys/internal/picker"
	"github.com/studiowebux/tabkeys/internal/types"
)

// DefaultExtensionID is the sender id signals must carry unless configured
const DefaultExtensionID = "tabkeys@studiowebux"

const (
	reloadTimeout  = 10 * time.Second
	maxActivity    = 20
	defaultTimeout = keybinds.DefaultSendTimeout
)

// SignalSource delivers controller signals
type SignalSource interface {
	Subscribe(fn messaging.SignalFunc) func()
}

// DispatchRecorder keeps a log of dispatched actions
type DispatchRecorder interface {
	RecordDispatch(ctx context.Context, msg types.ActionMessage, sendErr error) error
}

// Options configures an Agent. Channel is required.
type Options struct {
	// ExtensionID is the only sender whose signals are honoured
	ExtensionID string

	Store    keybinds.ConfigStore
	Channel  keybinds.ActionChannel
	Signals  SignalSource
	Recorder DispatchRecorder

	// Window defaults to a new top-level window
	Window *page.Window

	// Scheduler runs completions on the host loop; inline by default
	Scheduler func(func())

	Localizer   picker.Localizer
	SendTimeout time.Duration
	Logger      *slog.Logger
}

// Activity is one line of the agent's recent history
type Activity struct {
	At   time.Time
	Text string
}

// Agent is the per-page composition root
type Agent struct {
	opts    Options
	win     *page.Window
	matcher *keybinds.Matcher
	logger  *slog.Logger

	mu       sync.Mutex
	started  bool
	picker   *picker.Picker
	activity []Activity
}

// New creates an agent. Nothing is attached until Start.
func New(opts Options) (*Agent, error) {
	if opts.Channel == nil {
		return nil, errors.New("agent: an action channel is required")
	}
	if opts.ExtensionID == "" {
		opts.ExtensionID = DefaultExtensionID
	}
	if opts.Window == nil {
		opts.Window = page.NewWindow()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = func(fn func()) { fn() }
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	a := &Agent{
		opts:   opts,
		win:    opts.Window,
		logger: opts.Logger,
	}
	a.matcher = keybinds.NewMatcher(opts.Window, opts.Store, opts.Channel,
		keybinds.WithScheduler(opts.Scheduler),
		keybinds.WithLogger(opts.Logger),
		keybinds.WithSendTimeout(opts.SendTimeout),
		keybinds.WithDispatchObserver(a.recordDispatch),
	)
	return a, nil
}

// Start subscribes to controller signals, loads the hotkey table and
// attaches the window listeners
func (a *Agent) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return fmt.Errorf("agent already started")
	}
	a.started = true
	a.mu.Unlock()

	if a.opts.Signals != nil {
		cancel := a.opts.Signals.Subscribe(a.HandleSignal)
		a.matcher.OnTeardown(cancel)
	}
	a.matcher.OnTeardown(func() {
		a.logger.Info("[AGENT] unsubscribed")
		a.note("unsubscribed from controller")
	})

	a.reload(ctx)
	return nil
}

// Stop detaches every listener and the signal subscription
func (a *Agent) Stop() {
	a.matcher.Teardown()
	if p := a.Picker(); p != nil {
		p.Close()
	}
}

// Window returns the window the agent listens on
func (a *Agent) Window() *page.Window {
	return a.win
}

// Matcher returns the agent's hotkey matcher
func (a *Agent) Matcher() *keybinds.Matcher {
	return a.matcher
}

// Picker returns the open picker, or nil
func (a *Agent) Picker() *picker.Picker {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.picker
}

// Recent returns the latest activity, oldest first
func (a *Agent) Recent() []Activity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Activity(nil), a.activity...)
}

// HandleSignal reacts to a controller signal. Signals from any sender
// other than the configured extension id are dropped.
func (a *Agent) HandleSignal(sig types.Signal) {
	if sig.Sender != a.opts.ExtensionID {
		a.logger.Debug("[AGENT] dropping signal from foreign sender", "sender", sig.Sender, "action", sig.Action)
		return
	}
	if a.matcher.TornDown() {
		return
	}

	switch sig.Action {
	case types.SignalUpdateHotkeys:
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()
		a.reload(ctx)

	case types.SignalShowGroupPicker:
		req := picker.Request{Groups: sig.Groups, ActiveGroupID: sig.ActiveGroupID}
		a.opts.Scheduler(func() {
			a.openPicker(req)
		})

	default:
		a.logger.Debug("[AGENT] ignoring signal", "action", sig.Action)
	}
}

func (a *Agent) reload(ctx context.Context) {
	table := a.matcher.Reload(ctx)
	a.logger.Info("[AGENT] hotkeys loaded", "chords", len(table))
	a.note(fmt.Sprintf("hotkeys loaded (%d chords)", len(table)))
}

func (a *Agent) openPicker(req picker.Request) {
	p, err := picker.Open(a.win, req, picker.Options{
		OnSelect:  a.moveActiveTab,
		OnClose:   a.pickerClosed,
		Localizer: a.opts.Localizer,
		Logger:    a.logger,
	})
	if err != nil {
		a.logger.Debug("[AGENT] picker not opened", "error", err)
		return
	}

	a.mu.Lock()
	a.picker = p
	a.mu.Unlock()
	a.note("group picker opened")
}

func (a *Agent) pickerClosed() {
	a.mu.Lock()
	a.picker = nil
	a.mu.Unlock()
}

// moveActiveTab sends the picker selection. The send happens off the host
// loop and the acknowledgment is handled like a matcher dispatch.
func (a *Agent) moveActiveTab(id types.GroupID) {
	msg := types.ActionMessage{Action: keybinds.ActionMoveActiveTabToGroup, GroupID: &id}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.opts.SendTimeout)
		defer cancel()

		reply, err := a.opts.Channel.Send(ctx, msg)
		a.recordDispatch(msg, err)
		if err != nil {
			a.logger.Warn("[AGENT] failed to move tab", "group", id, "error", err)
			return
		}
		if reply.Unsubscribe {
			a.opts.Scheduler(a.matcher.Teardown)
		}
	}()
}

func (a *Agent) recordDispatch(msg types.ActionMessage, sendErr error) {
	text := string(msg.Action)
	if msg.GroupID != nil {
		text += " -> " + string(*msg.GroupID)
	}
	if sendErr != nil {
		text += " failed: " + sendErr.Error()
	}
	a.note(text)

	if a.opts.Recorder == nil {
		return
	}
	if err := a.opts.Recorder.RecordDispatch(context.Background(), msg, sendErr); err != nil {
		a.logger.Warn("[AGENT] failed to record dispatch", "error", err)
	}
}

func (a *Agent) note(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.activity = append(a.activity, Activity{At: time.Now(), Text: text})
	if len(a.activity) > maxActivity {
		a.activity = a.activity[len(a.activity)-maxActivity:]
	}
}
