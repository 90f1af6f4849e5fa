package streaming

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookTopic(t *testing.T) {
	assert.Equal(t, "book.BTC-PERPETUAL.100ms", BookTopic("BTC-PERPETUAL", "100ms"))
	assert.Equal(t, "book.ETH-PERPETUAL.100ms", BookTopic("ETH-PERPETUAL", "100ms"))
}

func TestNewSubscribeRequest(t *testing.T) {
	topic := BookTopic("ETH-PERPETUAL", "100ms")

	frame, err := NewSubscribeRequest(topic)
	require.NoError(t, err)

	var req struct {
		JSONRPC string `json:"jsonrpc"`
		ID      int64  `json:"id"`
		Method  string `json:"method"`
		Params  struct {
			Channels []string `json:"channels"`
		} `json:"params"`
	}
	require.NoError(t, json.Unmarshal([]byte(frame), &req))

	assert.Equal(t, "2.0", req.JSONRPC)
	assert.NotZero(t, req.ID)
	assert.Equal(t, "public/subscribe", req.Method)

	// The channel in the subscribe command is exactly the topic a consumer
	// must name to receive the forwarded updates.
	require.Len(t, req.Params.Channels, 1)
	assert.Equal(t, "book.ETH-PERPETUAL.100ms", req.Params.Channels[0])
}

func TestNewSubscribeRequest_UniqueIDs(t *testing.T) {
	first, err := NewSubscribeRequest("book.BTC-PERPETUAL.100ms")
	require.NoError(t, err)
	second, err := NewSubscribeRequest("book.BTC-PERPETUAL.100ms")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
