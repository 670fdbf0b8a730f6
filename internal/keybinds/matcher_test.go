package keybinds

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/studiowebux/tabkeys/internal/keyevent"
	"github.com/studiowebux/tabkeys/internal/page"
	"github.com/studiowebux/tabkeys/internal/types"
)

type fakeStore struct {
	raw json.RawMessage
	err error
}

func (s *fakeStore) GetHotkeys(ctx context.Context) (json.RawMessage, error) {
	return s.raw, s.err
}

// fakeChannel records sent messages. When hold is set, Send blocks until a
// reply is pushed on it.
type fakeChannel struct {
	mu    sync.Mutex
	sent  []types.ActionMessage
	sentC chan types.ActionMessage
	hold  chan types.ActionReply
	reply types.ActionReply
	err   error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{sentC: make(chan types.ActionMessage, 16)}
}

func (c *fakeChannel) Send(ctx context.Context, msg types.ActionMessage) (types.ActionReply, error) {
	c.mu.Lock()
	c.sent = append(c.sent, msg)
	c.mu.Unlock()
	c.sentC <- msg

	if c.err != nil {
		return types.ActionReply{}, c.err
	}
	if c.hold == nil {
		return c.reply, nil
	}
	select {
	case r := <-c.hold:
		return r, nil
	case <-ctx.Done():
		return types.ActionReply{}, ctx.Err()
	}
}

func (c *fakeChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func (c *fakeChannel) awaitSend(t *testing.T) types.ActionMessage {
	t.Helper()
	select {
	case msg := <-c.sentC:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a dispatch")
		return types.ActionMessage{}
	}
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func ctrlG() *keyevent.Event {
	return ctrl("g", 71)
}

func newTestMatcher(t *testing.T, ch ActionChannel, table Table) (*Matcher, *page.Window) {
	t.Helper()
	win := page.NewWindow()
	m := NewMatcher(win, nil, ch)
	m.Configure(table)
	m.Attach()
	return m, win
}

func TestMatcher_DispatchesMatchAndSuppressesEvent(t *testing.T) {
	id := types.GroupIDFromInt(7)
	ch := newFakeChannel()
	_, win := newTestMatcher(t, ch, Table{
		{Ctrl: true, Key: "g", Action: ActionMoveActiveTabToGroup, GroupID: &id},
	})

	ev := ctrlG()
	if win.Dispatch(ev) {
		t.Error("Dispatch reported the event as unsuppressed")
	}
	if !ev.DefaultPrevented() || !ev.PropagationStopped() || !ev.ImmediatePropagationStopped() {
		t.Error("matched event was not fully suppressed")
	}

	msg := ch.awaitSend(t)
	AssertField(t, "action", msg.Action, ActionMoveActiveTabToGroup)
	if msg.GroupID == nil || *msg.GroupID != id {
		t.Errorf("groupId = %v, want %v", msg.GroupID, id)
	}
}

func TestMatcher_UnmatchedEventPassesThrough(t *testing.T) {
	ch := newFakeChannel()
	_, win := newTestMatcher(t, ch, Table{{Ctrl: true, Key: "g", Action: ActionLoadNextGroup}})

	ev := ctrl("h", 72)
	if !win.Dispatch(ev) {
		t.Error("unmatched event should not be suppressed")
	}
	if ev.Consumed() {
		t.Error("unmatched event was touched")
	}
	AssertField(t, "sent", ch.count(), 0)
}

func TestMatcher_ModifierOnlyAndUntrustedIgnored(t *testing.T) {
	ch := newFakeChannel()
	m, _ := newTestMatcher(t, ch, Table{
		{Ctrl: true, KeyCode: keyevent.CodeControl, Action: ActionLoadNextGroup},
		{Ctrl: true, Key: "g", Action: ActionLoadPrevGroup},
	})

	m.OnKeyDown(ctrl("Control", keyevent.CodeControl))

	synthetic := ctrlG()
	synthetic.Trusted = false
	m.OnKeyDown(synthetic)

	AssertField(t, "guarded", m.Guarded(), false)
	AssertField(t, "sent", ch.count(), 0)
}

func TestMatcher_GuardBlocksRepeatsUntilKeyUp(t *testing.T) {
	ch := newFakeChannel()
	ch.hold = make(chan types.ActionReply, 2)
	m, win := newTestMatcher(t, ch, Table{{Ctrl: true, Key: "g", Action: ActionLoadNextGroup}})
	defer func() {
		ch.hold <- types.ActionReply{}
		ch.hold <- types.ActionReply{}
	}()

	win.Dispatch(ctrlG())
	ch.awaitSend(t)
	AssertField(t, "guarded", m.Guarded(), true)

	// auto-repeat while the acknowledgment is outstanding
	for i := 0; i < 5; i++ {
		ev := ctrlG()
		win.Dispatch(ev)
		if ev.Consumed() {
			t.Errorf("repeat %d was suppressed while guarded", i)
		}
	}
	AssertField(t, "sent while guarded", ch.count(), 1)

	win.Dispatch(keyevent.New(keyevent.KeyUp, "z", 90))
	AssertField(t, "guarded after key-up", m.Guarded(), false)

	win.Dispatch(ctrlG())
	ch.awaitSend(t)
	AssertField(t, "sent after key-up", ch.count(), 2)
}

func TestMatcher_AcknowledgmentClearsGuard(t *testing.T) {
	ch := newFakeChannel()
	m, win := newTestMatcher(t, ch, Table{{Ctrl: true, Key: "g", Action: ActionLoadNextGroup}})

	win.Dispatch(ctrlG())
	ch.awaitSend(t)
	waitUntil(t, "guard release", func() bool { return !m.Guarded() })

	win.Dispatch(ctrlG())
	ch.awaitSend(t)
	AssertField(t, "sent", ch.count(), 2)
}

func TestMatcher_SendErrorKeepsGuardUntilKeyUp(t *testing.T) {
	ch := newFakeChannel()
	ch.err = errors.New("controller gone")
	m, win := newTestMatcher(t, ch, Table{{Ctrl: true, Key: "g", Action: ActionLoadNextGroup}})

	win.Dispatch(ctrlG())
	ch.awaitSend(t)

	// give the dispatch goroutine time to finish
	time.Sleep(20 * time.Millisecond)
	AssertField(t, "guarded after failed send", m.Guarded(), true)

	win.Dispatch(keyevent.New(keyevent.KeyUp, "g", 71))
	AssertField(t, "guarded after key-up", m.Guarded(), false)
}

func TestMatcher_UnsubscribeReplyTearsDown(t *testing.T) {
	ch := newFakeChannel()
	ch.reply = types.ActionReply{Unsubscribe: true}
	m, win := newTestMatcher(t, ch, Table{{Ctrl: true, Key: "g", Action: ActionLoadNextGroup}})

	var mu sync.Mutex
	calls := 0
	m.OnTeardown(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	win.Dispatch(ctrlG())
	ch.awaitSend(t)
	waitUntil(t, "teardown", m.TornDown)

	AssertField(t, "keydown listeners", win.ListenerCount(keyevent.KeyDown), 0)
	AssertField(t, "keyup listeners", win.ListenerCount(keyevent.KeyUp), 0)

	m.Teardown()
	mu.Lock()
	AssertField(t, "hook calls", calls, 1)
	mu.Unlock()

	ev := ctrlG()
	m.OnKeyDown(ev)
	if ev.Consumed() {
		t.Error("torn down matcher still consumes events")
	}
}

func TestMatcher_TornDownNeverReattaches(t *testing.T) {
	m, win := newTestMatcher(t, newFakeChannel(), DefaultTable())
	m.Teardown()
	m.Reload(context.Background())

	AssertField(t, "attached", m.Attached(), false)
	AssertField(t, "keydown listeners", win.ListenerCount(keyevent.KeyDown), 0)
}

func TestMatcher_ReloadFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name  string
		store ConfigStore
	}{
		{"no store", nil},
		{"nothing stored", &fakeStore{}},
		{"read error", &fakeStore{err: errors.New("disk on fire")}},
		{"not an array", &fakeStore{raw: json.RawMessage(`"not-an-array"`)}},
		{"empty array", &fakeStore{raw: json.RawMessage(`[]`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(page.NewWindow(), tt.store, newFakeChannel())
			got := m.Reload(context.Background())

			if !reflect.DeepEqual(got, DefaultTable()) {
				t.Errorf("Reload() = %v, want default table", got)
			}
			if !reflect.DeepEqual(m.Table(), DefaultTable()) {
				t.Errorf("active table = %v, want default table", m.Table())
			}
			AssertField(t, "attached", m.Attached(), true)
		})
	}
}

func TestMatcher_ReloadInstallsStoredTable(t *testing.T) {
	store := &fakeStore{raw: json.RawMessage(`[
		{"ctrlKey": true, "shiftKey": false, "altKey": false, "metaKey": false,
		 "key": "g", "action": "move-active-tab-to-group", "groupId": 7}
	]`)}
	ch := newFakeChannel()
	win := page.NewWindow()
	m := NewMatcher(win, store, ch)

	table := m.Reload(context.Background())
	AssertField(t, "entries", len(table), 1)

	ev := ctrl("G", 71)
	win.Dispatch(ev)
	if !ev.DefaultPrevented() {
		t.Error("stored chord did not match")
	}
	msg := ch.awaitSend(t)

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	AssertField(t, "message", string(data), `{"action":"move-active-tab-to-group","groupId":7}`)
}

func TestMatcher_ReloadKeepsOneListenerPair(t *testing.T) {
	win := page.NewWindow()
	m := NewMatcher(win, &fakeStore{}, newFakeChannel())

	for i := 0; i < 3; i++ {
		m.Reload(context.Background())
	}

	AssertField(t, "keydown listeners", win.ListenerCount(keyevent.KeyDown), 1)
	AssertField(t, "keyup listeners", win.ListenerCount(keyevent.KeyUp), 1)
}

func TestMatcher_EmptyTableDoesNotAttach(t *testing.T) {
	win := page.NewWindow()
	m := NewMatcher(win, nil, newFakeChannel())
	m.Attach()

	AssertField(t, "attached", m.Attached(), false)
	AssertField(t, "keydown listeners", win.ListenerCount(keyevent.KeyDown), 0)
}

func TestMatcher_SchedulerRunsCompletions(t *testing.T) {
	var mu sync.Mutex
	var queued []func()
	schedule := func(fn func()) {
		mu.Lock()
		queued = append(queued, fn)
		mu.Unlock()
	}

	win := page.NewWindow()
	m := NewMatcher(win, nil, newFakeChannel(), WithScheduler(schedule))
	m.Reload(context.Background())

	if m.Attached() {
		t.Fatal("reload completed before the scheduler ran it")
	}

	mu.Lock()
	pending := queued
	queued = nil
	mu.Unlock()
	for _, fn := range pending {
		fn()
	}

	AssertField(t, "attached", m.Attached(), true)
}

func TestMatcher_DispatchObserver(t *testing.T) {
	type outcome struct {
		action types.Action
		err    error
	}
	seen := make(chan outcome, 1)
	ch := newFakeChannel()
	ch.err = errors.New("offline")
	win := page.NewWindow()
	m := NewMatcher(win, nil, ch, WithDispatchObserver(func(msg types.ActionMessage, err error) {
		seen <- outcome{msg.Action, err}
	}))
	m.Configure(Table{{Ctrl: true, Key: "g", Action: ActionLoadNextGroup}})
	m.Attach()

	win.Dispatch(ctrlG())

	select {
	case got := <-seen:
		AssertField(t, "action", got.action, ActionLoadNextGroup)
		if got.err == nil || got.err.Error() != "offline" {
			t.Errorf("observer error = %v, want offline", got.err)
		}
	case <-time.After(time.Second):
		t.Fatal("observer not called")
	}
}
