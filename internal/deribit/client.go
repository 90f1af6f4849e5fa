package deribit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"go-deribit-gateway/internal/infrastructure/logger"
)

// DefaultBaseURL points at the Deribit test environment.
const DefaultBaseURL = "https://test.deribit.com/api/v2"

// Client issues synchronous JSON-RPC 2.0 calls over HTTPS. Each call is
// independent and stateless aside from the bearer token obtained once via
// Authenticate.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  logger.Logger

	token     atomic.Pointer[string]
	requestID atomic.Int64
}

// NewClient builds a client against the given API base URL. An empty baseURL
// selects the test environment.
func NewClient(baseURL string, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		logger:  log.WithField("component", "deribit-rpc"),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *APIError       `json:"error"`
}

// APIError is the error object of a JSON-RPC reply.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("deribit: api error %d: %s", e.Code, e.Message)
}

// call performs one request/reply round trip and unmarshals the result field
// into out when out is non-nil.
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token := c.token.Load(); token != nil {
		httpReq.Header.Set("Authorization", "Bearer "+*token)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}

	if rpcResp.Error != nil {
		c.logger.Errorf("%s: %v", method, rpcResp.Error)
		return rpcResp.Error
	}

	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("unmarshal %s result: %w", method, err)
		}
	}
	return nil
}
