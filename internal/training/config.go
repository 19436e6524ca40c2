package training

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/JaimeStill/segmenter/internal/model"
)

// Config holds the local outputs of a training run.
type Config struct {
	ModelDir   string `toml:"model_dir"`
	ReportPath string `toml:"report_path"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ModelDir   string
	ReportPath string
}

// ModelPath returns the path of the local artifact copy.
func (c *Config) ModelPath() string {
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
	if overlay.ReportPath != "" {
		c.ReportPath = overlay.ReportPath
	}
}

func (c *Config) loadDefaults() {
	if c.ModelDir == "" {
		c.ModelDir = "models"
	}
	if c.ReportPath == "" {
		c.ReportPath = "reports/customer_clusters.csv"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.ModelDir != "" {
		if v := os.Getenv(env.ModelDir); v != "" {
			c.ModelDir = v
		}
	}
	if env.ReportPath != "" {
		if v := os.Getenv(env.ReportPath); v != "" {
			c.ReportPath = v
		}
	}
}

func (c *Config) validate() error {
	if c.ModelDir == "" {
		return fmt.Errorf("model_dir required")
	}
	if c.ReportPath == "" {
		return fmt.Errorf("report_path required")
	}
	return nil
}
