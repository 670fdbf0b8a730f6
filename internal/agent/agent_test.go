package agent

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/tabkeys/internal/controller"
	"github.com/studiowebux/tabkeys/internal/keybinds"
	"github.com/studiowebux/tabkeys/internal/keyevent"
	"github.com/studiowebux/tabkeys/internal/messaging"
	"github.com/studiowebux/tabkeys/internal/page"
	"github.com/studiowebux/tabkeys/internal/types"
)

const testSender = "tabkeys@test"

type memoryStore struct {
	mu  sync.Mutex
	raw json.RawMessage
}

func (s *memoryStore) GetHotkeys(ctx context.Context) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw, nil
}

func (s *memoryStore) set(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = json.RawMessage(raw)
}

type memoryRecorder struct {
	mu      sync.Mutex
	actions []types.Action
}

func (r *memoryRecorder) RecordDispatch(ctx context.Context, msg types.ActionMessage, sendErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, msg.Action)
	return nil
}

func (r *memoryRecorder) Actions() []types.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Action(nil), r.actions...)
}

type rig struct {
	agent    *Agent
	ctrl     *controller.Controller
	loopback *messaging.Loopback
	store    *memoryStore
	recorder *memoryRecorder
}

func newRig(t *testing.T, win *page.Window) *rig {
	t.Helper()

	lb := messaging.NewLoopback(testSender)
	ctrl := controller.New(lb, controller.Options{Groups: controller.GroupsFile{
		Active: 2,
		Groups: []controller.GroupRecord{
			{ID: 1, Title: "Work", Tabs: 2},
			{ID: 2, Title: "Research", Tabs: 1},
			{ID: 3, Title: "Shopping"},
		},
	}})
	lb.SetHandler(ctrl.Handle)

	store := &memoryStore{}
	recorder := &memoryRecorder{}
	a, err := New(Options{
		ExtensionID: testSender,
		Store:       store,
		Channel:     lb,
		Signals:     lb,
		Recorder:    recorder,
		Window:      win,
	})
	require.NoError(t, err)
	t.Cleanup(a.Stop)

	return &rig{agent: a, ctrl: ctrl, loopback: lb, store: store, recorder: recorder}
}

func ctrlKey(key string) *keyevent.Event {
	r := []rune(key)[0]
	return keyevent.New(keyevent.KeyDown, key, keyevent.CodeForRune(r)).WithModifiers(true, false, false, false)
}

func TestNew_RequiresChannel(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestAgent_StartLoadsDefaults(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.agent.Start(context.Background()))

	assert.True(t, r.agent.Matcher().Attached())
	assert.Equal(t, keybinds.DefaultTable(), r.agent.Matcher().Table())
	assert.Error(t, r.agent.Start(context.Background()), "second start")

	recent := r.agent.Recent()
	require.NotEmpty(t, recent)
	assert.Equal(t, "hotkeys loaded (2 chords)", recent[len(recent)-1].Text)
}

func TestAgent_DefaultChordSwitchesGroup(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.agent.Start(context.Background()))

	ev := ctrlKey("`")
	ev.KeyCode = keyevent.CodeBackQuote
	r.agent.Window().Dispatch(ev)

	require.Eventually(t, func() bool { return r.ctrl.Active() == "3" }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(r.recorder.Actions()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, keybinds.ActionLoadNextGroup, r.recorder.Actions()[0])
}

func TestAgent_PickerRoundTrip(t *testing.T) {
	r := newRig(t, nil)
	r.store.set(`[{"ctrlKey":true,"shiftKey":false,"altKey":false,"metaKey":false,"key":"g","action":"move-active-tab-to-custom-group"}]`)
	require.NoError(t, r.agent.Start(context.Background()))

	r.agent.Window().Dispatch(ctrlKey("g"))
	require.Eventually(t, func() bool { return r.agent.Picker() != nil }, time.Second, 5*time.Millisecond)

	p := r.agent.Picker()
	rows := p.Rows()
	require.Len(t, rows, 4)
	assert.False(t, rows[1].Enabled, "active group is disabled")
	assert.True(t, rows[0].Focused)

	// the capture listener consumes Enter before the matcher sees it
	enter := keyevent.New(keyevent.KeyDown, "Enter", keyevent.CodeReturn)
	r.agent.Window().Dispatch(enter)
	assert.True(t, enter.Consumed())
	assert.Nil(t, r.agent.Picker())

	require.Eventually(t, func() bool { return r.ctrl.TabCount("1") == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, r.ctrl.TabCount("2"))

	sent := r.loopback.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, keybinds.ActionMoveActiveTabToGroup, sent[1].Action)
	require.NotNil(t, sent[1].GroupID)
	assert.Equal(t, types.GroupID("1"), *sent[1].GroupID)
}

func TestAgent_DropsForeignSignals(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.agent.Start(context.Background()))

	r.agent.HandleSignal(types.Signal{
		Sender: "someone-else",
		Action: types.SignalShowGroupPicker,
		Groups: []types.Group{{ID: "1", Title: "Work"}},
	})
	assert.Nil(t, r.agent.Picker())

	r.loopback.Broadcast(types.Signal{
		Action: types.SignalShowGroupPicker,
		Groups: []types.Group{{ID: "1", Title: "Work"}},
	})
	assert.NotNil(t, r.agent.Picker())
}

func TestAgent_UpdateHotkeysReloads(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.agent.Start(context.Background()))
	require.Len(t, r.agent.Matcher().Table(), 2)

	r.store.set(`[{"ctrlKey":true,"shiftKey":false,"altKey":false,"metaKey":false,"key":"k","action":"load-first-group"}]`)
	r.loopback.Broadcast(types.Signal{Action: types.SignalUpdateHotkeys})

	table := r.agent.Matcher().Table()
	require.Len(t, table, 1)
	assert.Equal(t, keybinds.ActionLoadFirstGroup, table[0].Action)
	assert.Equal(t, 2, r.agent.Window().ListenerCount(keyevent.KeyDown)+r.agent.Window().ListenerCount(keyevent.KeyUp))
}

func TestAgent_UnsubscribeReply(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.agent.Start(context.Background()))
	r.ctrl.Retire()

	ev := ctrlKey("`")
	ev.KeyCode = keyevent.CodeBackQuote
	r.agent.Window().Dispatch(ev)

	// teardown hooks run in registration order, the note comes last
	require.Eventually(t, func() bool {
		recent := r.agent.Recent()
		return len(recent) > 0 && recent[len(recent)-1].Text == "unsubscribed from controller"
	}, time.Second, 5*time.Millisecond)
	assert.True(t, r.agent.Matcher().TornDown())
	assert.Equal(t, 0, r.agent.Window().ListenerCount(keyevent.KeyDown))

	// the signal subscription went with the listeners
	r.loopback.Broadcast(types.Signal{Action: types.SignalShowGroupPicker, Groups: []types.Group{{ID: "1", Title: "Work"}}})
	assert.Nil(t, r.agent.Picker())
}

func TestAgent_EmbeddedWindowNeverOpensPicker(t *testing.T) {
	r := newRig(t, page.NewEmbeddedWindow())
	require.NoError(t, r.agent.Start(context.Background()))

	r.loopback.Broadcast(types.Signal{
		Action: types.SignalShowGroupPicker,
		Groups: []types.Group{{ID: "1", Title: "Work"}},
	})
	assert.Nil(t, r.agent.Picker())
}

func TestAgent_SchedulerCarriesPickerOpen(t *testing.T) {
	var queued []func()
	lb := messaging.NewLoopback(testSender)
	a, err := New(Options{
		ExtensionID: testSender,
		Channel:     lb,
		Signals:     lb,
		Scheduler:   func(fn func()) { queued = append(queued, fn) },
	})
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))

	lb.Broadcast(types.Signal{Action: types.SignalShowGroupPicker, Groups: []types.Group{{ID: "1", Title: "Work"}}})
	assert.Nil(t, a.Picker(), "nothing opens until the host runs the queue")

	for len(queued) > 0 {
		fn := queued[0]
		queued = queued[1:]
		fn()
	}
	assert.NotNil(t, a.Picker())
}
