package segments

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/JaimeStill/segmenter/internal/model"
)

// Config holds serving settings for the inference adapter.
type Config struct {
	ModelDir    string `toml:"model_dir"`
	ServiceName string `toml:"service_name"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ModelDir    string
	ServiceName string
}

// ArtifactPath returns the path of the artifact file inside ModelDir.
func (c *Config) ArtifactPath() string {
	return filepath.Join(c.ModelDir, model.FileName)
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
	if overlay.ModelDir != "" {
		c.ModelDir = overlay.ModelDir
	}
	if overlay.ServiceName != "" {
		c.ServiceName = overlay.ServiceName
	}
}

func (c *Config) loadDefaults() {
	if c.ModelDir == "" {
		c.ModelDir = "model_files"
	}
	if c.ServiceName == "" {
		c.ServiceName = "FLO Segmentation API"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.ModelDir != "" {
		if v := os.Getenv(env.ModelDir); v != "" {
			c.ModelDir = v
		}
	}
	if env.ServiceName != "" {
		if v := os.Getenv(env.ServiceName); v != "" {
			c.ServiceName = v
		}
	}
}

func (c *Config) validate() error {
	if c.ModelDir == "" {
		return fmt.Errorf("model_dir required")
	}
	return nil
}
