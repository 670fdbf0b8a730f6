package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/studiowebux/tabkeys/internal/types"
)

const (
	writeDeadline      = 5 * time.Second
	readDeadline       = 90 * time.Second
	pingInterval       = 30 * time.Second
	maxReadMessageSize = 32 * 1024
)

// DefaultAddr is where the controller listens unless configured otherwise
const DefaultAddr = "127.0.0.1:7788"

// Only local agents connect; the listener is bound to loopback.
var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HubOptions configures a Hub
type HubOptions struct {
	// Addr is the listen address, DefaultAddr when empty
	Addr string

	// SenderID stamps outgoing signals that carry no sender
	SenderID string

	Logger *slog.Logger
}

// peer is one connected agent
type peer struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (p *peer) write(env Envelope) error {
	data, err := encodeEnvelope(env)
	if err != nil {
		return err
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if err := p.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		return err
	}
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub is the controller side of the websocket. Every connected agent can
// send actions; Broadcast pushes a signal to all of them.
type Hub struct {
	opts   HubOptions
	logger *slog.Logger

	mu      sync.RWMutex
	peers   map[*peer]struct{}
	handler ActionHandler

	listener  net.Listener
	server    *http.Server
	url       string
	closeOnce sync.Once
}

// NewHub creates a hub. Actions are acknowledged without side effects
// until SetHandler is called.
func NewHub(opts HubOptions) *Hub {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		opts:   opts,
		logger: logger,
		peers:  make(map[*peer]struct{}),
	}
}

// SetHandler installs the function that answers actions
func (h *Hub) SetHandler(fn ActionHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = fn
}

// Start begins listening. The server stops when ctx is cancelled or Stop
// is called.
func (h *Hub) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.opts.Addr, err)
	}
	h.listener = ln
	h.url = fmt.Sprintf("ws://%s/ws", ln.Addr().String())

	mux := http.NewServeMux()
	mux.Handle("/ws", h)

	h.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("[WS] server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		h.Stop()
	}()

	h.logger.Info("[WS] controller listening", "url", h.url)
	return nil
}

// Stop shuts the server down and disconnects every agent
func (h *Hub) Stop() {
	h.closeOnce.Do(func() {
		if h.server != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := h.server.Shutdown(shutdownCtx); err != nil {
				h.logger.Warn("[WS] shutdown error", "error", err)
			}
		}

		h.mu.Lock()
		for p := range h.peers {
			_ = p.conn.Close()
		}
		h.peers = make(map[*peer]struct{})
		h.mu.Unlock()
	})
}

// URL returns the websocket URL once started
func (h *Hub) URL() string {
	return h.url
}

// PeerCount returns the number of connected agents
func (h *Hub) PeerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Broadcast sends sig to every connected agent. Agents that cannot be
// written to are dropped.
func (h *Hub) Broadcast(sig types.Signal) {
	if sig.Sender == "" {
		sig.Sender = h.opts.SenderID
	}

	h.mu.RLock()
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.RUnlock()

	for _, p := range peers {
		if err := p.write(Envelope{Kind: KindSignal, Signal: &sig}); err != nil {
			h.logger.Warn("[WS] dropping agent after failed write", "error", err)
			h.removePeer(p)
		}
	}
	h.logger.Debug("[WS] broadcast", "action", sig.Action, "agents", len(peers))
}

func (h *Hub) removePeer(p *peer) {
	h.mu.Lock()
	delete(h.peers, p)
	h.mu.Unlock()
	_ = p.conn.Close()
}

// ServeHTTP upgrades the request and serves one agent until it disconnects
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("[WS] upgrade failed", "error", err)
		return
	}

	p := &peer{conn: conn}
	h.mu.Lock()
	h.peers[p] = struct{}{}
	h.mu.Unlock()
	defer h.removePeer(p)

	conn.SetReadLimit(maxReadMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	done := make(chan struct{})
	defer close(done)
	go h.pingLoop(p, done)

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("[WS] panic in read pump", "panic", rec)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("[WS] read error", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))

		env, err := decodeEnvelope(data)
		if err != nil {
			h.logger.Warn("[WS] dropping malformed frame", "error", err)
			continue
		}
		if env.Kind != KindAction {
			h.logger.Debug("[WS] ignoring frame from agent", "kind", env.Kind)
			continue
		}

		reply := h.answer(r.Context(), *env.Action)
		reply.ID = env.ID
		if err := p.write(Envelope{Kind: KindReply, ID: env.ID, Reply: &reply}); err != nil {
			h.logger.Warn("[WS] failed to send reply", "id", env.ID, "error", err)
			return
		}
	}
}

func (h *Hub) answer(ctx context.Context, msg types.ActionMessage) types.ActionReply {
	h.mu.RLock()
	handler := h.handler
	h.mu.RUnlock()

	if handler == nil {
		return types.ActionReply{ID: msg.ID}
	}
	return handler(ctx, msg)
}

func (h *Hub) pingLoop(p *peer, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			p.writeMu.Lock()
			err := p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline))
			p.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
