package registry

import (
	"fmt"
	"os"
)

// Config holds the model registry settings.
type Config struct {
	ModelName string `toml:"model_name"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ModelName string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ModelName != "" {
		c.ModelName = overlay.ModelName
	}
}

func (c *Config) loadDefaults() {
	if c.ModelName == "" {
		c.ModelName = "FloSegmentationModel"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.ModelName != "" {
		if v := os.Getenv(env.ModelName); v != "" {
			c.ModelName = v
		}
	}
}

func (c *Config) validate() error {
	if err := validateName(c.ModelName); err != nil {
		return fmt.Errorf("model_name: %w", err)
	}
	return nil
}
