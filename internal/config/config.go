// Package config provides configuration loading for the wlnx control panel.
//
// Configuration is loaded from a YAML file with environment variable
// overrides and sensible defaults. See LoadWithFile for precedence rules.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the complete control panel configuration.
type Config struct {
	API     APIConfig     `koanf:"api"`
	Polling PollingConfig `koanf:"polling"`
	Logging LoggingConfig `koanf:"logging"`
}

// APIConfig holds backend endpoint configuration.
type APIConfig struct {
	// BaseURL is the wlnx API server the panel reads from.
	BaseURL string `koanf:"base_url"`
	// BotURL is the optional bot service probed for liveness. The panel
	// tolerates this service being entirely absent.
	BotURL  string   `koanf:"bot_url"`
	Timeout Duration `koanf:"timeout"`
}

// PollingConfig holds the refresh loop intervals.
type PollingConfig struct {
	// ListInterval drives the coarse users-list poll.
	ListInterval Duration `koanf:"list_interval"`
	// DetailInterval drives the fine session-detail poll, active only
	// while a session is open.
	DetailInterval Duration `koanf:"detail_interval"`
	// HealthInterval drives the server/bot status probe.
	HealthInterval Duration `koanf:"health_interval"`
}

// LoggingConfig holds log output configuration. The TUI owns the
// terminal, so logs are written to a file rather than stdout.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if _, err := url.Parse(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url is not a valid URL: %w", err)
	}
	if c.API.BotURL != "" {
		if _, err := url.Parse(c.API.BotURL); err != nil {
			return fmt.Errorf("api.bot_url is not a valid URL: %w", err)
		}
	}
	if c.API.Timeout.Duration() <= 0 {
		return fmt.Errorf("api.timeout must be > 0, got %s", c.API.Timeout.Duration())
	}
	if c.Polling.ListInterval.Duration() < time.Second {
		return fmt.Errorf("polling.list_interval must be >= 1s, got %s", c.Polling.ListInterval.Duration())
	}
	if c.Polling.DetailInterval.Duration() < time.Second {
		return fmt.Errorf("polling.detail_interval must be >= 1s, got %s", c.Polling.DetailInterval.Duration())
	}
	if c.Polling.HealthInterval.Duration() < time.Second {
		return fmt.Errorf("polling.health_interval must be >= 1s, got %s", c.Polling.HealthInterval.Duration())
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:3000"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = Duration(10 * time.Second)
	}
	if cfg.Polling.ListInterval == 0 {
		cfg.Polling.ListInterval = Duration(30 * time.Second)
	}
	if cfg.Polling.DetailInterval == 0 {
		cfg.Polling.DetailInterval = Duration(3 * time.Second)
	}
	if cfg.Polling.HealthInterval == 0 {
		cfg.Polling.HealthInterval = Duration(30 * time.Second)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
