package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
name: deribit-gateway
hub:
  addr: ":8080"
streaming:
  host: test.deribit.com
  port: "443"
  path: /ws/api/v2
  verify_ssl: true
  connect_timeout_sec: 10
  read_timeout_sec: 30
subscription:
  instrument: BTC-PERPETUAL
  cadence: 100ms
deribit:
  base_url: https://test.deribit.com/api/v2
`

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "deribit-gateway", cfg.Name)
	assert.Equal(t, ":8080", cfg.Hub.Addr)
	assert.Equal(t, "test.deribit.com", cfg.Streaming.Host)
	assert.True(t, cfg.Streaming.VerifySSL)
	assert.Equal(t, "https://test.deribit.com/api/v2", cfg.Deribit.BaseURL)

	// Logger section is optional and falls back to defaults.
	require.NotNil(t, cfg.Logger)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestNewConfig_MissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestNewConfig_ValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"empty name", `
hub: {addr: ":8080"}
streaming: {host: h, port: "443"}
subscription: {instrument: BTC-PERPETUAL, cadence: 100ms}
`},
		{"missing hub addr", `
name: gw
streaming: {host: h, port: "443"}
subscription: {instrument: BTC-PERPETUAL, cadence: 100ms}
`},
		{"missing streaming host", `
name: gw
hub: {addr: ":8080"}
streaming: {port: "443"}
subscription: {instrument: BTC-PERPETUAL, cadence: 100ms}
`},
		{"negative timeout", `
name: gw
hub: {addr: ":8080"}
streaming: {host: h, port: "443", connect_timeout_sec: -1}
subscription: {instrument: BTC-PERPETUAL, cadence: 100ms}
`},
		{"missing cadence", `
name: gw
hub: {addr: ":8080"}
streaming: {host: h, port: "443"}
subscription: {instrument: BTC-PERPETUAL}
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(writeConfig(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestStreamingConfig_ToStreaming(t *testing.T) {
	sc := StreamingConfig{
		Host:              "test.deribit.com",
		Port:              "443",
		Path:              "/ws/api/v2",
		VerifySSL:         true,
		ConnectTimeoutSec: 10,
		ReadTimeoutSec:    30,
	}

	cfg := sc.ToStreaming()
	assert.Equal(t, "test.deribit.com", cfg.Host)
	assert.Equal(t, "443", cfg.Port)
	assert.True(t, cfg.VerifySSL)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
}

func TestSubscriptionConfig_Topic(t *testing.T) {
	sc := SubscriptionConfig{Instrument: "ETH-PERPETUAL", Cadence: "100ms"}
	assert.Equal(t, "book.ETH-PERPETUAL.100ms", sc.Topic())
}
