package streaming

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"go-deribit-gateway/internal/infrastructure/logger"
)

const (
	defaultPath           = "/ws/api/v2"
	defaultConnectTimeout = 10 * time.Second
	defaultReadTimeout    = 30 * time.Second
	closeGracePeriod      = 5 * time.Second
)

// Config holds the connection parameters for the exchange streaming endpoint.
// It is supplied once at client construction and never mutated afterwards.
type Config struct {
	Host string
	Port string
	Path string

	// VerifySSL disables peer certificate verification when false. That is a
	// deliberate opt-out for test environments, never a default.
	VerifySSL bool

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = defaultPath
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.ReadTimeout < 0 {
		c.ReadTimeout = 0
	}
	return c
}

// URL returns the wss endpoint the client dials.
func (c Config) URL() string {
	return "wss://" + net.JoinHostPort(c.Host, c.Port) + c.Path
}

// State is the connection state of a Client. A client is in exactly one state
// at any instant.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Client manages a single outbound secure WebSocket connection to the
// exchange streaming endpoint. All operations on one Client serialize on a
// single mutex, so a send or receive never overlaps a state transition.
//
// The client is reusable: after Disconnect it can Connect again.
type Client struct {
	cfg    Config
	logger logger.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	state   State
	lastErr string
}

// NewClient builds a client from the given config. It does not connect.
func NewClient(cfg Config, log logger.Logger) *Client {
	return &Client{
		cfg:    cfg.withDefaults(),
		logger: log.WithField("component", "stream-client"),
		state:  StateDisconnected,
	}
}

// Connect dials the streaming endpoint and performs the TLS and WebSocket
// handshakes. Calling Connect while already connected is a no-op. The whole
// attempt is bounded by the configured connect timeout. On failure the client
// is left Disconnected with the failure recorded as the last error.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateConnected {
		return nil
	}

	c.state = StateConnecting
	c.lastErr = ""

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.ConnectTimeout,
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: !c.cfg.VerifySSL},
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	conn, _, err := dialer.DialContext(dialCtx, c.cfg.URL(), nil)
	if err != nil {
		c.state = StateDisconnected
		c.lastErr = err.Error()
		c.logger.Errorf("connect to %s failed: %v", c.cfg.URL(), err)
		return &ConnectionError{Cause: err}
	}

	c.conn = conn
	c.state = StateConnected
	c.logger.Infof("connected to %s", c.cfg.URL())
	return nil
}

// Disconnect closes the connection. When connected it attempts a graceful
// close handshake first; any error on the way down is recorded as the last
// error but never surfaced. The client always ends up Disconnected.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConnected {
		c.state = StateDisconnected
		return
	}

	deadline := time.Now().Add(closeGracePeriod)
	closeFrame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.conn.WriteControl(websocket.CloseMessage, closeFrame, deadline); err != nil {
		c.lastErr = err.Error()
		c.logger.Warnf("graceful close failed: %v", err)
	}
	if err := c.conn.Close(); err != nil {
		c.lastErr = err.Error()
	}

	c.conn = nil
	c.state = StateDisconnected
	c.logger.Info("disconnected")
}

// Send writes one complete text frame. It fails with ErrNotConnected unless
// the client is Connected. A transport failure is recorded as the last error
// and returned as a SendError; the state is not changed, leaving reconnection
// policy to the caller.
func (c *Client) Send(message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConnected {
		return ErrNotConnected
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
		c.lastErr = err.Error()
		c.logger.Errorf("send failed: %v", err)
		return &SendError{Cause: err}
	}
	return nil
}

// Receive blocks until one complete inbound frame arrives, then invokes the
// callback synchronously with the frame payload as text. It fails with
// ErrNotConnected unless Connected, and with a ReceiveError on a transport
// failure or read timeout. Receive handles one frame per call; callers loop.
func (c *Client) Receive(callback func(message string)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConnected {
		return ErrNotConnected
	}

	if c.cfg.ReadTimeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}

	_, payload, err := c.conn.ReadMessage()
	if err != nil {
		c.lastErr = err.Error()
		c.logger.Errorf("receive failed: %v", err)
		return &ReceiveError{Cause: err}
	}

	callback(string(payload))
	return nil
}

// State reports the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the description of the most recent failure, or the empty
// string. It is overwritten by each failing operation and cleared at the
// start of every connect attempt.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
