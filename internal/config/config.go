// Package config loads the CLI's settings from REFERRAL_* environment
// variables.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Config holds the settings shared by every referralctl command.
// Example: REFERRAL_API_URL=https://api.example.com REFERRAL_DEBUG=true
type Config struct {
	APIURL      string        `envconfig:"API_URL" default:"http://localhost:3000"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`

	// StateDir holds the session database. Empty means ~/.referral-admin.
	StateDir string `envconfig:"STATE_DIR"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`

	// RanksFile optionally replaces the built-in rank table.
	RanksFile string `envconfig:"RANKS_FILE"`

	// Bulk delete executor
	BulkShards    int `envconfig:"BULK_SHARDS" default:"4"`
	BulkQueueSize int `envconfig:"BULK_QUEUE_SIZE" default:"128"`

	ExportMaxAttempts int `envconfig:"EXPORT_MAX_ATTEMPTS" default:"3"`
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid REFERRAL_API_URL: %q", c.APIURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("REFERRAL_HTTP_TIMEOUT must be > 0")
	}
	if c.BulkShards <= 0 || c.BulkQueueSize <= 0 {
		return fmt.Errorf("REFERRAL_BULK_SHARDS and REFERRAL_BULK_QUEUE_SIZE must be > 0")
	}
	if c.ExportMaxAttempts <= 0 {
		return fmt.Errorf("REFERRAL_EXPORT_MAX_ATTEMPTS must be > 0")
	}
	return nil
}

// New parses REFERRAL_* variables and validates the result.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("REFERRAL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LogSummary writes the effective settings at debug level.
func (c *Config) LogSummary(log zerolog.Logger) {
	log.Debug().
		Str("api_url", c.APIURL).
		Dur("http_timeout", c.HTTPTimeout).
		Str("state_dir", c.StateDir).
		Str("ranks_file", c.RanksFile).
		Int("bulk_shards", c.BulkShards).
		Int("bulk_queue_size", c.BulkQueueSize).
		Msg("Configuration loaded")
}
