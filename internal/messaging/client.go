package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/studiowebux/tabkeys/internal/types"
)

// Client is the agent side of the websocket. Send correlates replies by
// message id; signals go to every subscriber.
type Client struct {
	conn   *websocket.Conn
	logger *slog.Logger

	// writeMu serializes WriteMessage calls, gorilla/websocket allows one
	// concurrent writer
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan types.ActionReply
	subs    subscribers
	closed  bool

	done      chan struct{}
	closeOnce sync.Once
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithClientLogger sets the logger
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// Dial connects to the controller at url, e.g. ws://127.0.0.1:7788/ws
func Dial(ctx context.Context, url string, opts ...ClientOption) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to controller at %s: %w", url, err)
	}

	c := &Client{
		conn:    conn,
		logger:  slog.Default(),
		pending: make(map[string]chan types.ActionReply),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	conn.SetReadLimit(maxReadMessageSize)

	go c.readLoop()

	c.logger.Info("[WS] connected", "url", url)
	return c, nil
}

// Send delivers msg and waits for the controller's reply
func (c *Client) Send(ctx context.Context, msg types.ActionMessage) (types.ActionReply, error) {
	msg.ID = uuid.NewString()
	ch := make(chan types.ActionReply, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return types.ActionReply{}, ErrClosed
	}
	c.pending[msg.ID] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, msg.ID)
		c.mu.Unlock()
	}()

	if err := c.write(Envelope{Kind: KindAction, ID: msg.ID, Action: &msg}); err != nil {
		return types.ActionReply{}, err
	}

	select {
	case reply := <-ch:
		return reply, nil
	case <-ctx.Done():
		return types.ActionReply{}, ctx.Err()
	case <-c.done:
		return types.ActionReply{}, ErrClosed
	}
}

// Subscribe registers fn for signals. Callbacks run on the read goroutine.
// The returned function removes the subscription.
func (c *Client) Subscribe(fn SignalFunc) func() {
	c.mu.Lock()
	id := c.subs.add(fn)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		c.subs.remove(id)
		c.mu.Unlock()
	}
}

// Done is closed when the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close ends the connection. Pending sends fail with ErrClosed.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()

		err = c.conn.Close()
		c.markClosed()
	})
	return err
}

func (c *Client) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

func (c *Client) write(env Envelope) error {
	data, err := encodeEnvelope(env)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send %s: %w", env.Kind, err)
	}
	return nil
}

func (c *Client) readLoop() {
	defer c.markClosed()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("[WS] read error", "error", err)
			}
			return
		}

		env, err := decodeEnvelope(data)
		if err != nil {
			c.logger.Warn("[WS] dropping malformed frame", "error", err)
			continue
		}

		switch env.Kind {
		case KindReply:
			c.mu.Lock()
			ch, ok := c.pending[env.ID]
			c.mu.Unlock()
			if !ok {
				c.logger.Debug("[WS] reply for unknown message", "id", env.ID)
				continue
			}
			ch <- *env.Reply
		case KindSignal:
			c.mu.Lock()
			fns := c.subs.snapshot()
			c.mu.Unlock()
			for _, fn := range fns {
				fn(*env.Signal)
			}
		default:
			c.logger.Debug("[WS] ignoring frame", "kind", env.Kind)
		}
	}
}
