package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DefaultIngressPort is the well-known port the probe preamble broadcasts to.
const DefaultIngressPort = 65530

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Ingress   IngressConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	View      ViewConfig
}

// ServerConfig holds HTTP view server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// IngressConfig holds the datagram listener configuration.
type IngressConfig struct {
	Port       int    `envconfig:"UDP_PORT" default:"65530"`
	Host       string `envconfig:"UDP_HOST" default:"0.0.0.0"`
	ReadBuffer int    `envconfig:"UDP_READ_BUFFER" default:"65535"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration for the HTTP view.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// ViewConfig holds live view configuration.
type ViewConfig struct {
	TailStdout     bool          `envconfig:"TAIL_STDOUT" default:"false"`
	WSWriteTimeout time.Duration `envconfig:"WS_WRITE_TIMEOUT" default:"10s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Ingress: IngressConfig{
			Port:       DefaultIngressPort,
			Host:       "0.0.0.0",
			ReadBuffer: 65535,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		View: ViewConfig{
			TailStdout:     false,
			WSWriteTimeout: 10 * time.Second,
		},
	}
}

// Validate checks value ranges envconfig cannot express.
func (c *Config) Validate() error {
	if c.Ingress.Port < 0 || c.Ingress.Port > 65535 {
		return fmt.Errorf("invalid UDP_PORT %d: must be within 0-65535", c.Ingress.Port)
	}
	if c.Ingress.ReadBuffer <= 0 {
		return fmt.Errorf("invalid UDP_READ_BUFFER %d: must be positive", c.Ingress.ReadBuffer)
	}
	if c.View.WSWriteTimeout <= 0 {
		return fmt.Errorf("invalid WS_WRITE_TIMEOUT %s: must be positive", c.View.WSWriteTimeout)
	}
	return nil
}

// HTTPAddr returns the host:port the HTTP view listens on.
func (c *Config) HTTPAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// IngressAddr returns the host:port the datagram listener binds.
func (c *Config) IngressAddr() string {
	return net.JoinHostPort(c.Ingress.Host, strconv.Itoa(c.Ingress.Port))
}
