package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setupTestHome points HOME at a temp dir so tests never touch the real
// config directory.
func setupTestHome(t *testing.T) string {
	t.Helper()
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)
	return tmpHome
}

func TestLoadWithFile_Defaults(t *testing.T) {
	setupTestHome(t)

	cfg, err := LoadWithFile("")
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.API.BaseURL != "http://localhost:3000" {
		t.Errorf("API.BaseURL = %q, want default", cfg.API.BaseURL)
	}
	if cfg.Polling.ListInterval.Duration() != 30*time.Second {
		t.Errorf("Polling.ListInterval = %s, want 30s", cfg.Polling.ListInterval.Duration())
	}
	if cfg.Polling.DetailInterval.Duration() != 3*time.Second {
		t.Errorf("Polling.DetailInterval = %s, want 3s", cfg.Polling.DetailInterval.Duration())
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoadWithFile_ValidYAML(t *testing.T) {
	home := setupTestHome(t)

	configDir := filepath.Join(home, ".config", "wlnx-panel")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	yamlContent := `api:
  base_url: http://panel-api:8080
  bot_url: http://bot:4000
  timeout: 5s

polling:
  list_interval: 45s
  detail_interval: 2s
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.API.BaseURL != "http://panel-api:8080" {
		t.Errorf("API.BaseURL = %q, want http://panel-api:8080", cfg.API.BaseURL)
	}
	if cfg.API.BotURL != "http://bot:4000" {
		t.Errorf("API.BotURL = %q, want http://bot:4000", cfg.API.BotURL)
	}
	if cfg.API.Timeout.Duration() != 5*time.Second {
		t.Errorf("API.Timeout = %s, want 5s", cfg.API.Timeout.Duration())
	}
	if cfg.Polling.ListInterval.Duration() != 45*time.Second {
		t.Errorf("Polling.ListInterval = %s, want 45s", cfg.Polling.ListInterval.Duration())
	}
	// Unset fields still get defaults.
	if cfg.Polling.HealthInterval.Duration() != 30*time.Second {
		t.Errorf("Polling.HealthInterval = %s, want 30s default", cfg.Polling.HealthInterval.Duration())
	}
}

func TestLoadWithFile_EnvironmentOverride(t *testing.T) {
	home := setupTestHome(t)

	configDir := filepath.Join(home, ".config", "wlnx-panel")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("api:\n  base_url: http://from-yaml:3000\n"), 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	t.Setenv("WLNX_API_BASE_URL", "http://from-env:3000")
	t.Setenv("WLNX_POLLING_DETAIL_INTERVAL", "2s")

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.API.BaseURL != "http://from-env:3000" {
		t.Errorf("API.BaseURL = %q, want env override", cfg.API.BaseURL)
	}
	if cfg.Polling.DetailInterval.Duration() != 2*time.Second {
		t.Errorf("Polling.DetailInterval = %s, want 2s", cfg.Polling.DetailInterval.Duration())
	}
}

func TestLoadWithFile_InvalidYAML(t *testing.T) {
	home := setupTestHome(t)

	configDir := filepath.Join(home, ".config", "wlnx-panel")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("api: [not a map"), 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := LoadWithFile(configPath); err == nil {
		t.Fatal("LoadWithFile() error = nil, want parse error")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"missing base URL", func(c *Config) { c.API.BaseURL = "" }, true},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, true},
		{"sub-second list interval", func(c *Config) { c.Polling.ListInterval = Duration(100 * time.Millisecond) }, true},
		{"sub-second detail interval", func(c *Config) { c.Polling.DetailInterval = Duration(500 * time.Millisecond) }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if d.Duration() != 90*time.Second {
		t.Errorf("Duration() = %s, want 1m30s", d.Duration())
	}

	if err := d.UnmarshalText([]byte("-5s")); err == nil {
		t.Error("UnmarshalText(-5s) error = nil, want negative duration error")
	}
}
