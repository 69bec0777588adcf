// Package main implements the wlnx-panel terminal control panel for
// the wlnx wellness-coaching backend.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/api"
	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/config"
	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/logging"
	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/state"
	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/tui"
)

var (
	configFile string
	serverURL  string
	// version information (set via ldflags during build)
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wlnx-panel",
	Short: "Terminal control panel for the wlnx wellness-coaching backend",
	Long: `wlnx-panel is a terminal dashboard for inspecting wlnx users and
their coaching sessions, editing conversation prompts and coach
personas, and deleting sessions.

Configuration is read from a YAML file with WLNX_* environment
overrides. A .env file in the working directory is honored.

Examples:
  # Run against the default local backend
  wlnx-panel

  # Point at a different server
  wlnx-panel --server http://wlnx.internal:3000

  # Use an explicit config file
  wlnx-panel --config ~/.config/wlnx-panel/config.yaml`,
	Version: version,
	RunE:    runPanel,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "API server URL (overrides config)")
	rootCmd.AddCommand(healthCmd)
}

// healthCmd probes the backends once and reports, without starting
// the UI. Useful in scripts and for a quick smoke check.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend health and exit",
	RunE:  runHealth,
}

func loadConfig() (*config.Config, error) {
	// A .env in the working directory feeds the WLNX_* overrides.
	_ = godotenv.Load()

	cfg, err := config.LoadWithFile(configFile)
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.API.BaseURL = serverURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runPanel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file under the
	// config directory unless configured otherwise.
	logFile := cfg.Logging.File
	if logFile == "" {
		dir, err := config.Dir()
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
		logFile = filepath.Join(dir, "panel.log")
	}
	logCfg, err := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Format, logFile)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log, err := logging.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = log.Sync() }()

	dir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}

	client := api.New(cfg.API.BaseURL, cfg.API.BotURL, cfg.API.Timeout.Duration(), log)
	model := tui.New(cfg, client, log, state.Open(dir))

	log.Info(nil, "panel starting",
		zap.String("version", version),
		zap.String("server", cfg.API.BaseURL))

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error(nil, "panel terminated", zap.Error(err))
		return fmt.Errorf("run panel: %w", err)
	}
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client := api.New(cfg.API.BaseURL, cfg.API.BotURL, cfg.API.Timeout.Duration(), logging.NewNop())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	serverUp := client.Health(ctx)
	botUp := client.BotHealth(ctx)

	fmt.Printf("server %s  %s\n", cfg.API.BaseURL, upDown(serverUp))
	if cfg.API.BotURL != "" {
		fmt.Printf("bot    %s  %s\n", cfg.API.BotURL, upDown(botUp))
	}
	if !serverUp {
		return fmt.Errorf("server is not healthy")
	}
	return nil
}

func upDown(up bool) string {
	if up {
		return "up"
	}
	return "down"
}
