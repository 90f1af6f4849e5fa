package streaming

import "errors"

// ErrNotConnected is returned by Send and Receive when the client is not in
// the Connected state. The transport is never touched in that case.
var ErrNotConnected = errors.New("streaming: not connected")

// ConnectionError reports a failed connection attempt: name resolution, TCP
// connect, TLS handshake or the WebSocket upgrade.
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return "streaming: connect failed: " + e.Cause.Error()
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

// SendError reports a transport failure while writing a frame. The client
// state is left untouched; reconnection is the caller's decision.
type SendError struct {
	Cause error
}

func (e *SendError) Error() string {
	return "streaming: send failed: " + e.Cause.Error()
}

func (e *SendError) Unwrap() error { return e.Cause }

// ReceiveError reports a transport failure or read timeout while waiting for
// a frame. As with SendError, the client state is not demoted.
type ReceiveError struct {
	Cause error
}

func (e *ReceiveError) Error() string {
	return "streaming: receive failed: " + e.Cause.Error()
}

func (e *ReceiveError) Unwrap() error { return e.Cause }
