package cluster

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the cluster-count sweep and K-Means parameters.
type Config struct {
	MinK    int     `toml:"min_k"`
	MaxK    int     `toml:"max_k"`
	NInit   int     `toml:"n_init"`
	Seed    uint64  `toml:"seed"`
	MaxIter int     `toml:"max_iter"`
	Tol     float64 `toml:"tol"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	MinK    string
	MaxK    string
	NInit   string
	Seed    string
	MaxIter string
	Tol     string
}

// KMeans returns the K-Means parameters for candidate k.
func (c *Config) KMeans(k int) KMeans {
	return KMeans{
		K:       k,
		NInit:   c.NInit,
		Seed:    c.Seed,
		MaxIter: c.MaxIter,
		Tol:     c.Tol,
	}
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
	if overlay.MinK != 0 {
		c.MinK = overlay.MinK
	}
	if overlay.MaxK != 0 {
		c.MaxK = overlay.MaxK
	}
	if overlay.NInit != 0 {
		c.NInit = overlay.NInit
	}
	if overlay.Seed != 0 {
		c.Seed = overlay.Seed
	}
	if overlay.MaxIter != 0 {
		c.MaxIter = overlay.MaxIter
	}
	if overlay.Tol != 0 {
		c.Tol = overlay.Tol
	}
}

func (c *Config) loadDefaults() {
	if c.MinK == 0 {
		c.MinK = 3
	}
	if c.MaxK == 0 {
		c.MaxK = 10
	}
	if c.NInit == 0 {
		c.NInit = 10
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.MaxIter == 0 {
		c.MaxIter = 300
	}
	if c.Tol == 0 {
		c.Tol = 1e-4
	}
}

func (c *Config) loadEnv(env *Env) {
	ints := []struct {
		key  string
		dest *int
	}{
		{env.MinK, &c.MinK},
		{env.MaxK, &c.MaxK},
		{env.NInit, &c.NInit},
		{env.MaxIter, &c.MaxIter},
	}
	for _, f := range ints {
		if f.key == "" {
			continue
		}
		if v := os.Getenv(f.key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*f.dest = n
			}
		}
	}

	if env.Seed != "" {
		if v := os.Getenv(env.Seed); v != "" {
			if n, err := strconv.ParseUint(v, 10, 64); err == nil {
				c.Seed = n
			}
		}
	}
	if env.Tol != "" {
		if v := os.Getenv(env.Tol); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.Tol = f
			}
		}
	}
}

func (c *Config) validate() error {
	if c.MinK < 2 {
		return fmt.Errorf("%w: min_k must be at least 2, got %d", ErrConfiguration, c.MinK)
	}
	if c.MaxK < c.MinK {
		return fmt.Errorf("%w: max_k %d is less than min_k %d", ErrConfiguration, c.MaxK, c.MinK)
	}
	if c.NInit < 1 {
		return fmt.Errorf("%w: n_init must be positive, got %d", ErrConfiguration, c.NInit)
	}
	if c.MaxIter < 1 {
		return fmt.Errorf("%w: max_iter must be positive, got %d", ErrConfiguration, c.MaxIter)
	}
	if c.Tol < 0 {
		return fmt.Errorf("%w: tol must not be negative", ErrConfiguration)
	}
	return nil
}
