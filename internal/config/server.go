package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost            = "SEGMENTER_SERVER_HOST"
	EnvServerPort            = "SEGMENTER_SERVER_PORT"
	EnvServerReadTimeout     = "SEGMENTER_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "SEGMENTER_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout     = "SEGMENTER_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout = "SEGMENTER_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters. Timeouts are Go duration
// strings; predictions are small synchronous requests so the defaults are short.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	IdleTimeout     string `toml:"idle_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ReadTimeoutDuration returns ReadTimeout as a time.Duration.
func (c *ServerConfig) ReadTimeoutDuration() time.Duration { return duration(c.ReadTimeout) }

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration { return duration(c.WriteTimeout) }

// IdleTimeoutDuration returns IdleTimeout as a time.Duration.
func (c *ServerConfig) IdleTimeoutDuration() time.Duration { return duration(c.IdleTimeout) }

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration { return duration(c.ShutdownTimeout) }

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for dst, src := range c.timeouts(overlay) {
		if src != "" {
			*dst = src
		}
	}
}

// timeouts pairs each timeout field of c with the matching field of other.
func (c *ServerConfig) timeouts(other *ServerConfig) map[*string]string {
	return map[*string]string{
		&c.ReadTimeout:     other.ReadTimeout,
		&c.WriteTimeout:    other.WriteTimeout,
		&c.IdleTimeout:     other.IdleTimeout,
		&c.ShutdownTimeout: other.ShutdownTimeout,
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	c.ReadTimeout = or(c.ReadTimeout, "30s")
	c.WriteTimeout = or(c.WriteTimeout, "30s")
	c.IdleTimeout = or(c.IdleTimeout, "2m")
	c.ShutdownTimeout = or(c.ShutdownTimeout, "30s")
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	c.Merge(&ServerConfig{
		ReadTimeout:     os.Getenv(EnvServerReadTimeout),
		WriteTimeout:    os.Getenv(EnvServerWriteTimeout),
		IdleTimeout:     os.Getenv(EnvServerIdleTimeout),
		ShutdownTimeout: os.Getenv(EnvServerShutdownTimeout),
	})
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	fields := []struct{ name, value string }{
		{"read_timeout", c.ReadTimeout},
		{"write_timeout", c.WriteTimeout},
		{"idle_timeout", c.IdleTimeout},
		{"shutdown_timeout", c.ShutdownTimeout},
	}
	for _, f := range fields {
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid %s: must be positive", f.name)
		}
	}
	return nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
