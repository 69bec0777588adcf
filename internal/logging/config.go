package logging

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level  zapcore.Level
	Format string
	// File is where log output is written. The dashboard owns the
	// terminal, so stdout is not an option while the TUI runs; an empty
	// File sends logs to stderr (useful for the non-TUI subcommands).
	File string
}

// NewDefaultConfig returns config with production-ready defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  zapcore.InfoLevel,
		Format: "json",
	}
}

// FromSettings builds a Config from the string form used in the main
// configuration file.
func FromSettings(level, format, file string) (*Config, error) {
	parsed, err := LevelFromString(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := &Config{
		Level:  parsed,
		Format: format,
		File:   file,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	}
	return nil
}
