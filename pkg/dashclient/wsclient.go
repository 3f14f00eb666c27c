package dashclient

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ctrmdash/internal/coordinator"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSClient follows the dashboard event stream and reconnects when it drops.
type WSClient struct {
	url            string
	reconnectDelay time.Duration
	logger         *zap.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	handler func(coordinator.Event)
	onState func(connected bool)
}

func NewWSClient(url string, reconnectDelay time.Duration, logger *zap.Logger) *WSClient {
	if reconnectDelay <= 0 {
		reconnectDelay = 3 * time.Second
	}
	return &WSClient{
		url:            url,
		reconnectDelay: reconnectDelay,
		logger:         logger,
	}
}

// SetMessageHandler sets the function receiving every decoded event.
func (c *WSClient) SetMessageHandler(h func(coordinator.Event)) {
	c.handler = h
}

// SetStateHandler sets the function told about connects and disconnects.
func (c *WSClient) SetStateHandler(h func(connected bool)) {
	c.onState = h
}

// Connect establishes the WebSocket connection. It does not start the listener.
func (c *WSClient) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.logger.Error("Failed to connect to WebSocket", zap.String("url", c.url), zap.Error(err))
		return err
	}

	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = conn
	c.mu.Unlock()

	c.logger.Info("WebSocket connected", zap.String("url", c.url))
	c.setState(true)
	return nil
}

// Listen reads events until ctx ends, reconnecting after read errors.
func (c *WSClient) Listen(ctx context.Context) {
	go func() {
		<-ctx.Done()
		c.Close()
	}()

	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		if conn == nil {
			if !c.reconnect(ctx) {
				return
			}
			continue
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("WebSocket read error", zap.Error(err))
			c.setState(false)
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			_ = conn.Close()
			continue
		}

		var ev coordinator.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			c.logger.Warn("failed to parse event", zap.Error(err))
			continue
		}
		if c.handler != nil {
			c.handler(ev)
		}
	}
}

// reconnect retries until a connection is made or ctx ends.
func (c *WSClient) reconnect(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.reconnectDelay):
		}
		if err := c.Connect(ctx); err != nil {
			c.logger.Warn("Retrying reconnect...")
			continue
		}
		c.logger.Info("Reconnected successfully")
		return true
	}
}

func (c *WSClient) setState(connected bool) {
	if c.onState != nil {
		c.onState(connected)
	}
}

func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = c.conn.Close()
	}
}
