package messaging

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/studiowebux/tabkeys/internal/types"
)

// Loopback connects an agent to an in-process controller. It satisfies
// both ends: the agent sends and subscribes, the controller handles and
// broadcasts.
type Loopback struct {
	senderID string

	mu      sync.Mutex
	handler ActionHandler
	subs    subscribers
	sent    []types.ActionMessage
	closed  bool
}

// NewLoopback creates a loopback whose signals carry senderID
func NewLoopback(senderID string) *Loopback {
	return &Loopback{senderID: senderID}
}

// SetHandler installs the function that answers actions. Without one,
// every action is acknowledged.
func (l *Loopback) SetHandler(fn ActionHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = fn
}

// Send hands msg to the handler on the calling goroutine
func (l *Loopback) Send(ctx context.Context, msg types.ActionMessage) (types.ActionReply, error) {
	if err := ctx.Err(); err != nil {
		return types.ActionReply{}, err
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return types.ActionReply{}, ErrClosed
	}
	l.sent = append(l.sent, msg)
	handler := l.handler
	l.mu.Unlock()

	if handler == nil {
		return types.ActionReply{ID: msg.ID}, nil
	}
	reply := handler(ctx, msg)
	reply.ID = msg.ID
	return reply, nil
}

// Subscribe registers fn for broadcast signals
func (l *Loopback) Subscribe(fn SignalFunc) func() {
	l.mu.Lock()
	id := l.subs.add(fn)
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		l.subs.remove(id)
		l.mu.Unlock()
	}
}

// Broadcast delivers sig to every subscriber on the calling goroutine
func (l *Loopback) Broadcast(sig types.Signal) {
	if sig.Sender == "" {
		sig.Sender = l.senderID
	}

	l.mu.Lock()
	fns := l.subs.snapshot()
	l.mu.Unlock()

	for _, fn := range fns {
		fn(sig)
	}
}

// Sent returns every message sent so far
func (l *Loopback) Sent() []types.ActionMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.ActionMessage, len(l.sent))
	copy(out, l.sent)
	return out
}

// Close makes further sends fail with ErrClosed
func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
