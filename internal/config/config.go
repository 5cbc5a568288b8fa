// internal/config/config.go
// Client configuration read from CHAT_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
)

// DefaultEndpoint is the chat server the client talks to unless overridden.
const DefaultEndpoint = "ws://127.0.0.1:8090/c05554ae-b4ee-4976-ac05-97aaf3c98a24"

// Config holds all client configuration.
type Config struct {
	Endpoint         string        `envconfig:"ENDPOINT"`
	NatsURL          string        `envconfig:"NATS_URL"`
	StatusAddr       string        `envconfig:"STATUS_ADDR"`
	HandshakeTimeout time.Duration `envconfig:"HANDSHAKE_TIMEOUT"`
	LoggerConfig     string        `envconfig:"LOGGER_CONFIG"`
}

// Load starts from Default and overrides whatever the environment sets.
func Load() (*Config, error) {
	cfg := Default()
	if err := envconfig.Process("chat", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when the environment sets nothing.
func Default() *Config {
	return &Config{
		Endpoint:         DefaultEndpoint,
		HandshakeTimeout: 10 * time.Second,
		LoggerConfig:     "logger_config.json",
	}
}

// EndpointChannel returns the UUID path segment of the endpoint. An endpoint
// that does not end in a UUID still works; the error only explains why.
func (c *Config) EndpointChannel() (uuid.UUID, error) {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse endpoint: %w", err)
	}
	id, err := uuid.Parse(path.Base(u.Path))
	if err != nil {
		return uuid.Nil, fmt.Errorf("endpoint path %q: %w", u.Path, err)
	}
	return id, nil
}
