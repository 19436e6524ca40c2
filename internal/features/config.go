package features

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds feature pipeline paths and parameters.
type Config struct {
	RawDataPath       string   `toml:"raw_data_path"`
	ProcessedDataPath string   `toml:"processed_data_path"`
	AnalysisDate      string   `toml:"analysis_date"`
	OutlierColumns    []string `toml:"outlier_columns"`
	IQRThreshold      float64  `toml:"iqr_threshold"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	RawDataPath       string
	ProcessedDataPath string
	AnalysisDate      string
	OutlierColumns    string
	IQRThreshold      string
}

// AnalysisTime returns AnalysisDate as a UTC calendar date.
func (c *Config) AnalysisTime() time.Time {
	t, _ := time.Parse(DateLayout, c.AnalysisDate)
	return t
}

// Options returns the processing options described by the config.
func (c *Config) Options() Options {
	return Options{
		AnalysisDate:   c.AnalysisTime(),
		OutlierColumns: c.OutlierColumns,
		IQRThreshold:   c.IQRThreshold,
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
	if overlay.RawDataPath != "" {
		c.RawDataPath = overlay.RawDataPath
	}
	if overlay.ProcessedDataPath != "" {
		c.ProcessedDataPath = overlay.ProcessedDataPath
	}
	if overlay.AnalysisDate != "" {
		c.AnalysisDate = overlay.AnalysisDate
	}
	if overlay.OutlierColumns != nil {
		c.OutlierColumns = overlay.OutlierColumns
	}
	if overlay.IQRThreshold != 0 {
		c.IQRThreshold = overlay.IQRThreshold
	}
}

func (c *Config) loadDefaults() {
	if c.RawDataPath == "" {
		c.RawDataPath = "data/raw/flo_data_20k.csv"
	}
	if c.ProcessedDataPath == "" {
		c.ProcessedDataPath = "data/processed/rfm_data.csv"
	}
	if c.AnalysisDate == "" {
		c.AnalysisDate = "2021-06-01"
	}
	if c.OutlierColumns == nil {
		c.OutlierColumns = []string{ColumnTotalOrder, ColumnTotalPrice}
	}
	if c.IQRThreshold == 0 {
		c.IQRThreshold = 1.5
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.RawDataPath != "" {
		if v := os.Getenv(env.RawDataPath); v != "" {
			c.RawDataPath = v
		}
	}
	if env.ProcessedDataPath != "" {
		if v := os.Getenv(env.ProcessedDataPath); v != "" {
			c.ProcessedDataPath = v
		}
	}
	if env.AnalysisDate != "" {
		if v := os.Getenv(env.AnalysisDate); v != "" {
			c.AnalysisDate = v
		}
	}
	if env.OutlierColumns != "" {
		if v := os.Getenv(env.OutlierColumns); v != "" {
			cols := strings.Split(v, ",")
			c.OutlierColumns = make([]string, 0, len(cols))
			for _, col := range cols {
				if trimmed := strings.TrimSpace(col); trimmed != "" {
					c.OutlierColumns = append(c.OutlierColumns, trimmed)
				}
			}
		}
	}
	if env.IQRThreshold != "" {
		if v := os.Getenv(env.IQRThreshold); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.IQRThreshold = f
			}
		}
	}
}

func (c *Config) validate() error {
	if c.RawDataPath == "" {
		return fmt.Errorf("raw_data_path required")
	}
	if c.ProcessedDataPath == "" {
		return fmt.Errorf("processed_data_path required")
	}
	if _, err := time.Parse(DateLayout, c.AnalysisDate); err != nil {
		return fmt.Errorf("invalid analysis_date: %w", err)
	}
	for _, col := range c.OutlierColumns {
		if !knownColumn(col) {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, col)
		}
	}
	if c.IQRThreshold < 0 {
		return fmt.Errorf("iqr_threshold must not be negative")
	}
	return nil
}
