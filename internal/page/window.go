package page

import (
	"sync"

	"github.com/studiowebux/tabkeys/internal/keyevent"
)

// Listener receives key events dispatched on a Window
type Listener func(ev *keyevent.Event)

// ListenerID identifies a registered listener for removal
type ListenerID uint64

// Options control how a listener is registered
type Options struct {
	// Capture listeners run before every non-capture listener
	Capture bool
}

type registration struct {
	id       ListenerID
	typ      keyevent.Type
	capture  bool
	listener Listener
}

// Overlay is something mounted on top of the page, such as a modal
type Overlay interface {
	View(width, height int) string
}

// Window is the event target key events are dispatched on. Listeners run
// capture phase first, then bubble phase, each in registration order.
type Window struct {
	mu        sync.Mutex
	nextID    ListenerID
	listeners []registration
	overlays  map[string]Overlay
	order     []string
	embedded  bool
}

// NewWindow creates a top-level window
func NewWindow() *Window {
	return &Window{overlays: make(map[string]Overlay)}
}

// NewEmbeddedWindow creates a window that is not the top-level frame
func NewEmbeddedWindow() *Window {
	w := NewWindow()
	w.embedded = true
	return w
}

// IsTop reports whether the window is the top-level frame
func (w *Window) IsTop() bool {
	return !w.embedded
}

// AddEventListener registers fn for events of type t
func (w *Window) AddEventListener(t keyevent.Type, fn Listener, opts Options) ListenerID {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	w.listeners = append(w.listeners, registration{
		id:       w.nextID,
		typ:      t,
		capture:  opts.Capture,
		listener: fn,
	})
	return w.nextID
}

// RemoveEventListener unregisters a listener. Unknown ids are ignored.
func (w *Window) RemoveEventListener(id ListenerID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, reg := range w.listeners {
		if reg.id == id {
			w.listeners = append(w.listeners[:i], w.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount returns the number of listeners registered for t
func (w *Window) ListenerCount(t keyevent.Type) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for _, reg := range w.listeners {
		if reg.typ == t {
			n++
		}
	}
	return n
}

// Dispatch delivers ev to the listeners registered for its type and reports
// whether the event reached the end of the walk without being suppressed.
func (w *Window) Dispatch(ev *keyevent.Event) bool {
	capture, bubble := w.snapshot(ev.Type)

	for _, phase := range [][]Listener{capture, bubble} {
		for _, fn := range phase {
			fn(ev)
			if ev.ImmediatePropagationStopped() {
				return false
			}
		}
		if ev.PropagationStopped() {
			return false
		}
	}

	return !ev.DefaultPrevented()
}

// snapshot copies the listeners so they can add or remove listeners while
// an event is being dispatched
func (w *Window) snapshot(t keyevent.Type) ([]Listener, []Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var capture, bubble []Listener
	for _, reg := range w.listeners {
		if reg.typ != t {
			continue
		}
		if reg.capture {
			capture = append(capture, reg.listener)
		} else {
			bubble = append(bubble, reg.listener)
		}
	}
	return capture, bubble
}

// Mount places an overlay under id. It returns false when id is taken.
func (w *Window) Mount(id string, o Overlay) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.overlays[id]; exists {
		return false
	}
	w.overlays[id] = o
	w.order = append(w.order, id)
	return true
}

// Unmount removes the overlay registered under id
func (w *Window) Unmount(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.overlays[id]; !exists {
		return
	}
	delete(w.overlays, id)
	for i, existing := range w.order {
		if existing == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// Overlay returns the overlay mounted under id
func (w *Window) Overlay(id string) (Overlay, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	o, ok := w.overlays[id]
	return o, ok
}

// TopOverlay returns the most recently mounted overlay
func (w *Window) TopOverlay() (Overlay, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.order) == 0 {
		return nil, false
	}
	return w.overlays[w.order[len(w.order)-1]], true
}
