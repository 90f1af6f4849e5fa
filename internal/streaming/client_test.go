package streaming

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-deribit-gateway/internal/infrastructure/logger"
)

// testServer is a TLS WebSocket endpoint backed by httptest. Clients dial it
// with certificate verification disabled.
type testServer struct {
	srv      *httptest.Server
	upgrades atomic.Int64
}

func newTestServer(t *testing.T, handler func(conn *websocket.Conn)) *testServer {
	t.Helper()

	ts := &testServer{}
	upgrader := websocket.Upgrader{}

	ts.srv = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ts.upgrades.Add(1)
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(ts.srv.Close)

	return ts
}

func (ts *testServer) config(t *testing.T) Config {
	t.Helper()

	u, err := url.Parse(ts.srv.URL)
	require.NoError(t, err)

	return Config{
		Host:           u.Hostname(),
		Port:           u.Port(),
		Path:           "/",
		VerifySSL:      false,
		ConnectTimeout: 3 * time.Second,
		ReadTimeout:    2 * time.Second,
	}
}

// echo reads frames and writes them straight back until the peer goes away.
func echo(conn *websocket.Conn) {
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := conn.WriteMessage(mt, data); err != nil {
			return
		}
	}
}

func TestClient_ConnectIsIdempotent(t *testing.T) {
	ts := newTestServer(t, echo)
	client := NewClient(ts.config(t), logger.NewNopLogger())
	defer client.Disconnect()

	require.NoError(t, client.Connect(context.Background()))
	require.Equal(t, StateConnected, client.State())

	// A second connect while connected must not perform a new handshake.
	require.NoError(t, client.Connect(context.Background()))
	assert.Equal(t, StateConnected, client.State())
	assert.EqualValues(t, 1, ts.upgrades.Load())
}

func TestClient_SendReceiveRequireConnected(t *testing.T) {
	ts := newTestServer(t, echo)
	client := NewClient(ts.config(t), logger.NewNopLogger())

	err := client.Send("hello")
	require.ErrorIs(t, err, ErrNotConnected)

	err = client.Receive(func(string) { t.Fatal("callback must not run") })
	require.ErrorIs(t, err, ErrNotConnected)

	assert.Equal(t, StateDisconnected, client.State())
	assert.EqualValues(t, 0, ts.upgrades.Load(), "transport must not be touched")
}

func TestClient_SendReceiveRoundTrip(t *testing.T) {
	ts := newTestServer(t, echo)
	client := NewClient(ts.config(t), logger.NewNopLogger())
	defer client.Disconnect()

	require.NoError(t, client.Connect(context.Background()))
	require.NoError(t, client.Send(`{"ping":1}`))

	var got string
	require.NoError(t, client.Receive(func(msg string) { got = msg }))
	assert.Equal(t, `{"ping":1}`, got)

	// Errors on send/receive have not occurred, so no last error either.
	assert.Empty(t, client.LastError())
}

func TestClient_DisconnectAlwaysEndsDisconnected(t *testing.T) {
	ts := newTestServer(t, echo)
	client := NewClient(ts.config(t), logger.NewNopLogger())

	// Disconnect without a connection is a safe no-op.
	client.Disconnect()
	assert.Equal(t, StateDisconnected, client.State())

	require.NoError(t, client.Connect(context.Background()))
	client.Disconnect()
	assert.Equal(t, StateDisconnected, client.State())
	client.Disconnect()
	assert.Equal(t, StateDisconnected, client.State())

	// The client is reusable after disconnect.
	require.NoError(t, client.Connect(context.Background()))
	assert.Equal(t, StateConnected, client.State())
	client.Disconnect()
}

func TestClient_ConnectFailureSetsLastError(t *testing.T) {
	cfg := Config{
		Host:           "127.0.0.1",
		Port:           "1", // nothing listens here
		VerifySSL:      false,
		ConnectTimeout: 500 * time.Millisecond,
	}
	client := NewClient(cfg, logger.NewNopLogger())

	start := time.Now()
	err := client.Connect(context.Background())
	elapsed := time.Since(start)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, StateDisconnected, client.State())
	assert.NotEmpty(t, client.LastError())
	assert.Less(t, elapsed, cfg.ConnectTimeout+2*time.Second,
		"connect must fail within the timeout plus a small margin")
}

func TestClient_ConnectClearsLastError(t *testing.T) {
	ts := newTestServer(t, echo)

	cfg := ts.config(t)
	client := NewClient(cfg, logger.NewNopLogger())
	defer client.Disconnect()

	bad := cfg
	bad.Port = "1"
	badClient := NewClient(bad, logger.NewNopLogger())
	require.Error(t, badClient.Connect(context.Background()))
	require.NotEmpty(t, badClient.LastError())

	require.NoError(t, client.Connect(context.Background()))
	assert.Empty(t, client.LastError())
}

func TestClient_ReceiveTimeoutKeepsStateConnected(t *testing.T) {
	silent := make(chan struct{})
	ts := newTestServer(t, func(conn *websocket.Conn) {
		<-silent
	})
	defer close(silent)

	cfg := ts.config(t)
	cfg.ReadTimeout = 200 * time.Millisecond
	client := NewClient(cfg, logger.NewNopLogger())
	defer client.Disconnect()

	require.NoError(t, client.Connect(context.Background()))

	err := client.Receive(func(string) { t.Fatal("no frame expected") })
	var recvErr *ReceiveError
	require.ErrorAs(t, err, &recvErr)
	assert.NotEmpty(t, client.LastError())

	// The state is deliberately not demoted; reconnection is up to the caller.
	assert.Equal(t, StateConnected, client.State())
}

func TestClient_ErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")

	assert.ErrorIs(t, &ConnectionError{Cause: cause}, cause)
	assert.ErrorIs(t, &SendError{Cause: cause}, cause)
	assert.ErrorIs(t, &ReceiveError{Cause: cause}, cause)
}
