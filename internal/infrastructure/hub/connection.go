package hub

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"go-deribit-gateway/internal/infrastructure/logger"
)

// WebSocketConnection implements Connection over a gorilla WebSocket. Inbound
// text frames are handed to the message handler (the hub's subscribe
// parsing); outbound payloads go out verbatim through a buffered send
// channel drained by the write pump.
type WebSocketConnection struct {
	id   string
	conn *websocket.Conn

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.RWMutex

	logger logger.Logger

	send    chan string
	onFrame MessageHandler

	writeTimeout time.Duration
	pongTimeout  time.Duration
}

// NewWebSocketConnection wraps an upgraded WebSocket and starts its read and
// write pumps.
func NewWebSocketConnection(
	id string,
	conn *websocket.Conn,
	onFrame MessageHandler,
	log logger.Logger,
) *WebSocketConnection {
	ctx, cancel := context.WithCancel(context.Background())

	c := &WebSocketConnection{
		id:           id,
		conn:         conn,
		ctx:          ctx,
		cancel:       cancel,
		logger:       log.WithField("connection_id", id),
		send:         make(chan string, 256),
		onFrame:      onFrame,
		writeTimeout: 10 * time.Second,
		pongTimeout:  60 * time.Second,
	}

	c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
		return nil
	})

	go c.writePump()
	go c.readPump()

	return c
}

// ID returns the generated connection identifier.
func (c *WebSocketConnection) ID() string { return c.id }

// Type returns "websocket".
func (c *WebSocketConnection) Type() string { return "websocket" }

// Send queues one payload for delivery as a single text frame.
func (c *WebSocketConnection) Send(ctx context.Context, payload string) error {
	if c.IsClosed() {
		return fmt.Errorf("connection %s is closed", c.id)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case c.send <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return fmt.Errorf("connection %s is closed", c.id)
	case <-time.After(5 * time.Second):
		return fmt.Errorf("send to connection %s timed out", c.id)
	}
}

// Close sends a close frame and tears the connection down. Safe to call more
// than once.
func (c *WebSocketConnection) Close() error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()

	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	c.conn.Close()

	c.logger.Info("websocket connection closed")
	return nil
}

// IsClosed reports whether Close has run.
func (c *WebSocketConnection) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}

// Context is cancelled once the connection is closed.
func (c *WebSocketConnection) Context() context.Context { return c.ctx }

func (c *WebSocketConnection) writePump() {
	// Ping below the pong timeout so an idle but healthy consumer stays up.
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				c.logger.Errorf("write failed: %v", err)
				c.Close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Errorf("ping failed: %v", err)
				c.Close()
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *WebSocketConnection) readPump() {
	defer c.Close()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure,
			) {
				c.logger.Errorf("read failed: %v", err)
			}
			return
		}

		if messageType == websocket.TextMessage && c.onFrame != nil {
			c.onFrame(c.id, data)
		}
	}
}

// SSEConnection implements Connection over a server-sent-events response. It
// is write-only: the subscription topic is fixed at registration time by the
// handler, there is no inbound channel.
type SSEConnection struct {
	id      string
	writer  http.ResponseWriter
	flusher http.Flusher

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.RWMutex

	writeMu sync.Mutex

	logger logger.Logger
}

// NewSSEConnection wraps a streaming HTTP response. The caller must have set
// the SSE headers before the first Send.
func NewSSEConnection(
	ctx context.Context,
	id string,
	w http.ResponseWriter,
	log logger.Logger,
) *SSEConnection {
	rctx, cancel := context.WithCancel(ctx)

	flusher, _ := w.(http.Flusher)

	return &SSEConnection{
		id:      id,
		writer:  w,
		flusher: flusher,
		ctx:     rctx,
		cancel:  cancel,
		logger:  log.WithField("connection_id", id),
	}
}

// ID returns the generated connection identifier.
func (c *SSEConnection) ID() string { return c.id }

// Type returns "sse".
func (c *SSEConnection) Type() string { return "sse" }

// Send writes one payload as a single SSE data event, verbatim.
func (c *SSEConnection) Send(ctx context.Context, payload string) error {
	if c.IsClosed() {
		return fmt.Errorf("connection %s is closed", c.id)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := fmt.Fprintf(c.writer, "data: %s\n\n", payload); err != nil {
		c.Close()
		return fmt.Errorf("write to connection %s: %w", c.id, err)
	}
	if c.flusher != nil {
		c.flusher.Flush()
	}
	return nil
}

// Close cancels the connection context. The HTTP handler owns the response
// lifetime and returns once the context is done.
func (c *SSEConnection) Close() error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()

	c.logger.Info("sse connection closed")
	return nil
}

// IsClosed reports whether Close has run.
func (c *SSEConnection) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}

// Context is cancelled once the connection is closed.
func (c *SSEConnection) Context() context.Context { return c.ctx }
