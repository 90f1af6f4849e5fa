package hub

import "context"

// Connection represents one downstream consumer (WebSocket, SSE, ...). The
// hub identifies a connection only by its ID; it never owns the socket.
type Connection interface {
	ID() string
	Type() string

	// Send delivers one payload verbatim as a single text frame.
	Send(ctx context.Context, payload string) error

	Close() error
	IsClosed() bool

	// Context is cancelled when the connection goes away, gracefully or not.
	Context() context.Context
}

// MessageHandler consumes raw inbound frames from a consumer connection.
// The hub's HandleMessage satisfies it.
type MessageHandler func(connID string, data []byte)
