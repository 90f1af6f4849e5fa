package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"go-deribit-gateway/internal/infrastructure/logger"
	"go-deribit-gateway/internal/streaming"
)

// Config is the application configuration, loaded once at startup from a
// YAML file. Credentials never live here; they come from the environment.
type Config struct {
	Name         string             `yaml:"name"`
	Hub          HubConfig          `yaml:"hub"`
	Streaming    StreamingConfig    `yaml:"streaming"`
	Subscription SubscriptionConfig `yaml:"subscription"`
	Deribit      DeribitConfig      `yaml:"deribit"`
	Logger       *logger.Config     `yaml:"logger"`
}

// HubConfig configures the local broadcast listener.
type HubConfig struct {
	Addr string `yaml:"addr"`
}

// StreamingConfig configures the exchange streaming connection. Timeouts are
// whole seconds; zero picks the client defaults.
type StreamingConfig struct {
	Host              string `yaml:"host"`
	Port              string `yaml:"port"`
	Path              string `yaml:"path"`
	VerifySSL         bool   `yaml:"verify_ssl"`
	ConnectTimeoutSec int    `yaml:"connect_timeout_sec"`
	ReadTimeoutSec    int    `yaml:"read_timeout_sec"`
}

// ToStreaming converts the YAML representation into the client config.
func (s StreamingConfig) ToStreaming() streaming.Config {
	return streaming.Config{
		Host:           s.Host,
		Port:           s.Port,
		Path:           s.Path,
		VerifySSL:      s.VerifySSL,
		ConnectTimeout: time.Duration(s.ConnectTimeoutSec) * time.Second,
		ReadTimeout:    time.Duration(s.ReadTimeoutSec) * time.Second,
	}
}

// SubscriptionConfig names the order book channel the pump subscribes to.
type SubscriptionConfig struct {
	Instrument string `yaml:"instrument"`
	Cadence    string `yaml:"cadence"`
}

// Topic builds the channel string for the configured subscription.
func (s SubscriptionConfig) Topic() string {
	return streaming.BookTopic(s.Instrument, s.Cadence)
}

// DeribitConfig configures the synchronous JSON-RPC endpoint.
type DeribitConfig struct {
	BaseURL string `yaml:"base_url"`
}

// NewConfig loads and validates the configuration file.
func NewConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.NewDefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate performs basic configuration validation.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config name cannot be empty")
	}
	if c.Hub.Addr == "" {
		return fmt.Errorf("hub listen address cannot be empty")
	}
	if c.Streaming.Host == "" {
		return fmt.Errorf("streaming host cannot be empty")
	}
	if c.Streaming.Port == "" {
		return fmt.Errorf("streaming port cannot be empty")
	}
	if c.Streaming.ConnectTimeoutSec < 0 || c.Streaming.ReadTimeoutSec < 0 {
		return fmt.Errorf("streaming timeouts cannot be negative")
	}
	if c.Subscription.Instrument == "" {
		return fmt.Errorf("subscription instrument cannot be empty")
	}
	if c.Subscription.Cadence == "" {
		return fmt.Errorf("subscription cadence cannot be empty")
	}
	return nil
}
