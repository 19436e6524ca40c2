// Package config loads the segmenter configuration from config.toml, an
// optional per-environment overlay and SEGMENTER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/segmenter/internal/cluster"
	"github.com/JaimeStill/segmenter/internal/features"
	"github.com/JaimeStill/segmenter/internal/registry"
	"github.com/JaimeStill/segmenter/internal/segments"
	"github.com/JaimeStill/segmenter/internal/training"
	"github.com/JaimeStill/segmenter/pkg/database"
	"github.com/JaimeStill/segmenter/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvSegmenterEnv             = "SEGMENTER_ENV"
	EnvSegmenterShutdownTimeout = "SEGMENTER_SHUTDOWN_TIMEOUT"
	EnvSegmenterVersion         = "SEGMENTER_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "SEGMENTER_DB_HOST",
	Port:            "SEGMENTER_DB_PORT",
	Name:            "SEGMENTER_DB_NAME",
	User:            "SEGMENTER_DB_USER",
	Password:        "SEGMENTER_DB_PASSWORD",
	SSLMode:         "SEGMENTER_DB_SSL_MODE",
	MaxOpenConns:    "SEGMENTER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SEGMENTER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SEGMENTER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SEGMENTER_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "SEGMENTER_STORAGE_PROVIDER",
	ContainerName:    "SEGMENTER_STORAGE_CONTAINER_NAME",
	ConnectionString: "SEGMENTER_STORAGE_CONNECTION_STRING",
	AccountURL:       "SEGMENTER_STORAGE_ACCOUNT_URL",
	Root:             "SEGMENTER_STORAGE_ROOT",
}

// Config is the root configuration shared by the segmenter commands.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Pipeline        features.Config `toml:"pipeline"`
	Selection       cluster.Config  `toml:"selection"`
	Registry        registry.Config `toml:"registry"`
	Serving         segments.Config `toml:"serving"`
	Training        training.Config `toml:"training"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the SEGMENTER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvSegmenterEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load builds the configuration in three layers: config.toml when present,
// the config.<env>.toml overlay selected by SEGMENTER_ENV, then environment
// variables and defaults applied per section.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := decodeFile(BaseConfigFile, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if path := overlayPath(); path != "" {
		var overlay Config
		if err := decodeFile(path, &overlay); err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(&overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Selection.Merge(&overlay.Selection)
	c.Registry.Merge(&overlay.Registry)
	c.Serving.Merge(&overlay.Serving)
	c.Training.Merge(&overlay.Training)
}

type section struct {
	name     string
	finalize func() error
}

// sections lists the sub-configs in finalize order.
func (c *Config) sections() []section {
	return []section{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"pipeline", func() error { return c.Pipeline.Finalize(pipelineEnv) }},
		{"selection", func() error { return c.Selection.Finalize(selectionEnv) }},
		{"registry", func() error { return c.Registry.Finalize(registryEnv) }},
		{"serving", func() error { return c.Serving.Finalize(servingEnv) }},
		{"training", func() error { return c.Training.Finalize(trainingEnv) }},
	}
}

func (c *Config) finalize() error {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if v, ok := os.LookupEnv(EnvSegmenterShutdownTimeout); ok && v != "" {
		c.ShutdownTimeout = v
	}
	if v, ok := os.LookupEnv(EnvSegmenterVersion); ok && v != "" {
		c.Version = v
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}

	for _, s := range c.sections() {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// decodeFile unmarshals the TOML file at path into cfg. A missing file
// surfaces as fs.ErrNotExist.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func overlayPath() string {
	env := os.Getenv(EnvSegmenterEnv)
	if env == "" {
		return ""
	}
	path := fmt.Sprintf(OverlayConfigPattern, env)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
