package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/segmenter/pkg/formatting"
	"github.com/JaimeStill/segmenter/pkg/middleware"
	"github.com/JaimeStill/segmenter/pkg/openapi"
	"github.com/JaimeStill/segmenter/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "SEGMENTER_CORS_ENABLED",
	Origins:          "SEGMENTER_CORS_ORIGINS",
	AllowedMethods:   "SEGMENTER_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "SEGMENTER_CORS_ALLOWED_HEADERS",
	AllowCredentials: "SEGMENTER_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "SEGMENTER_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "SEGMENTER_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "SEGMENTER_PAGINATION_MAX_PAGE_SIZE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "SEGMENTER_OPENAPI_TITLE",
	Description: "SEGMENTER_OPENAPI_DESCRIPTION",
	Servers:     "SEGMENTER_OPENAPI_SERVERS",
}

// APIConfig holds API routing, request limits, CORS, pagination and
// OpenAPI document settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
	OpenAPI     openapi.Config        `toml:"openapi"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes, falling back to 1MB.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("SEGMENTER_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("SEGMENTER_API_MAX_BODY_SIZE"); v != "" {
		c.MaxBodySize = v
	}
}

func (c *APIConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	return nil
}
