package streaming

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
)

var requestID atomic.Int64

// BookTopic builds the order book channel name for an instrument at a given
// update cadence, e.g. "book.BTC-PERPETUAL.100ms". The same string is used as
// the routing key in the local broadcast hub.
func BookTopic(instrument, cadence string) string {
	return fmt.Sprintf("book.%s.%s", instrument, cadence)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type subscribeParams struct {
	Channels []string `json:"channels"`
}

// NewSubscribeRequest builds the outbound public/subscribe frame for the
// given channels as a JSON-RPC 2.0 request.
func NewSubscribeRequest(channels ...string) (string, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      requestID.Add(1),
		Method:  "public/subscribe",
		Params:  subscribeParams{Channels: channels},
	}

	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal subscribe request: %w", err)
	}
	return string(data), nil
}
