package openapi

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Config holds the document metadata. Servers are absolute base URLs the
// API is published under; when empty the document uses relative paths.
type Config struct {
	Title       string   `toml:"title"`
	Description string   `toml:"description"`
	Servers     []string `toml:"servers"`
}

// ConfigEnv names the environment variables that override Config fields.
type ConfigEnv struct {
	Title       string
	Description string
	Servers     string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.Title == "" {
		c.Title = "Segmenter API"
	}
	if c.Description == "" {
		c.Description = "Customer segmentation inference and model registry service."
	}
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
	if overlay.Servers != nil {
		c.Servers = overlay.Servers
	}
}

// ServerURLs joins basePath onto each configured server, or returns
// basePath alone when no servers are configured.
func (c *Config) ServerURLs(basePath string) []string {
	if len(c.Servers) == 0 {
		return []string{basePath}
	}
	urls := make([]string, len(c.Servers))
	for i, s := range c.Servers {
		urls[i] = strings.TrimSuffix(s, "/") + basePath
	}
	return urls
}

func (c *Config) loadEnv(env *ConfigEnv) {
	if v := getenv(env.Title); v != "" {
		c.Title = v
	}
	if v := getenv(env.Description); v != "" {
		c.Description = v
	}
	if v := getenv(env.Servers); v != "" {
		c.Servers = nil
		for s := range strings.SplitSeq(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.Servers = append(c.Servers, s)
			}
		}
	}
}

func (c *Config) validate() error {
	for _, s := range c.Servers {
		u, err := url.Parse(s)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("invalid server url: %q", s)
		}
	}
	return nil
}

func getenv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
