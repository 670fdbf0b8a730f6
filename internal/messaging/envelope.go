// Package messaging carries actions from page agents to the controller and
// signals back, over a websocket (Client, Hub) or in process (Loopback).
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/studiowebux/tabkeys/internal/types"
)

// ErrClosed is returned by Send once the channel has been closed
var ErrClosed = errors.New("messaging: channel closed")

// Kind tags a wire envelope
type Kind string

const (
	KindAction Kind = "action"
	KindReply  Kind = "reply"
	KindSignal Kind = "signal"
)

// Envelope is the JSON frame exchanged on the websocket. Exactly one of
// Action, Reply or Signal is set, matching Kind.
type Envelope struct {
	Kind   Kind                 `json:"kind"`
	ID     string               `json:"id,omitempty"`
	Action *types.ActionMessage `json:"action,omitempty"`
	Reply  *types.ActionReply   `json:"reply,omitempty"`
	Signal *types.Signal        `json:"signal,omitempty"`
}

// ActionHandler answers an action. It runs on the connection's read
// goroutine.
type ActionHandler func(ctx context.Context, msg types.ActionMessage) types.ActionReply

// SignalFunc receives signals pushed by the controller
type SignalFunc func(sig types.Signal)

func encodeEnvelope(env Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s envelope: %w", env.Kind, err)
	}
	return data, nil
}

func decodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to decode envelope: %w", err)
	}

	switch env.Kind {
	case KindAction:
		if env.Action == nil {
			return Envelope{}, fmt.Errorf("action envelope without action")
		}
	case KindReply:
		if env.Reply == nil {
			env.Reply = &types.ActionReply{}
		}
	case KindSignal:
		if env.Signal == nil {
			return Envelope{}, fmt.Errorf("signal envelope without signal")
		}
	default:
		return Envelope{}, fmt.Errorf("unknown envelope kind %q", env.Kind)
	}

	return env, nil
}

// subscribers is a registry of signal callbacks shared by Client and
// Loopback
type subscribers struct {
	next uint64
	fns  map[uint64]SignalFunc
}

func (s *subscribers) add(fn SignalFunc) uint64 {
	if s.fns == nil {
		s.fns = make(map[uint64]SignalFunc)
	}
	s.next++
	s.fns[s.next] = fn
	return s.next
}

func (s *subscribers) remove(id uint64) {
	delete(s.fns, id)
}

func (s *subscribers) snapshot() []SignalFunc {
	out := make([]SignalFunc, 0, len(s.fns))
	for i := uint64(1); i <= s.next; i++ {
		if fn, ok := s.fns[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}
