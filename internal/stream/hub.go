// Package stream pushes coordinator events to websocket clients.
package stream

import (
	"net/http"
	"sync"
	"time"

	"ctrmdash/internal/coordinator"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventSource is the subscription side of the coordinator.
type EventSource interface {
	Subscribe(buffer int) (<-chan coordinator.Event, func())
}

type Config struct {
	Buffer     int           // per-client event buffer
	WriteWait  time.Duration // deadline for a single frame write
	PingPeriod time.Duration
	// AllowedOrigin is matched against the Origin header; "" or "*" accepts any.
	AllowedOrigin string
}

func (c Config) withDefaults() Config {
	if c.Buffer <= 0 {
		c.Buffer = 32
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 5 * time.Second
	}
	if c.PingPeriod <= 0 {
		c.PingPeriod = 30 * time.Second
	}
	return c
}

// Hub tracks connected websocket clients. Every client gets its own
// subscription so a stalled connection only loses its own events.
type Hub struct {
	logger   *zap.Logger
	source   EventSource
	cfg      Config
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn        *websocket.Conn
	events      <-chan coordinator.Event
	unsubscribe func()
	done        chan struct{}
	closeOnce   sync.Once
}

func NewHub(logger *zap.Logger, source EventSource, cfg Config) *Hub {
	cfg = cfg.withDefaults()
	h := &Hub{
		logger:  logger.With(zap.String("component", "stream")),
		source:  source,
		cfg:     cfg,
		clients: make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if h.cfg.AllowedOrigin == "" || h.cfg.AllowedOrigin == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == h.cfg.AllowedOrigin
}

// ServeWS upgrades the request and streams events until the client leaves.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the handshake completes so no event published after
	// the client sees the upgrade is missed.
	events, unsubscribe := h.source.Subscribe(h.cfg.Buffer)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		unsubscribe()
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn:        conn,
		events:      events,
		unsubscribe: unsubscribe,
		done:        make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		unsubscribe()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("websocket client connected", zap.String("remote", r.RemoteAddr), zap.Int("clients", n))

	go h.readLoop(c)
	h.writeLoop(c)
}

// readLoop drains inbound frames so control messages are processed and a
// closed connection is noticed.
func (h *Hub) readLoop(c *client) {
	defer h.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer h.drop(c)

	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-c.events:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(h.cfg.WriteWait))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				h.logger.Warn("websocket client gone, dropping", zap.String("event", string(ev.Type)), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.cfg.WriteWait)); err != nil {
				return
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	c.closeOnce.Do(func() {
		close(c.done)
		c.unsubscribe()
		_ = c.conn.Close()

		h.mu.Lock()
		delete(h.clients, c)
		n := len(h.clients)
		h.mu.Unlock()
		h.logger.Info("websocket client disconnected", zap.Int("clients", n))
	})
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.drop(c)
	}
}
