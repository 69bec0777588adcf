package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_FileSink(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "panel.log")
	cfg := &Config{Level: zapcore.DebugLevel, Format: "json", File: logFile}

	log, err := NewLogger(cfg)
	require.NoError(t, err)

	log.Info(context.Background(), "panel started", zap.String("base_url", "http://localhost:3000"))
	require.NoError(t, log.Sync())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "panel started")
	assert.Contains(t, string(content), "base_url")
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	_, err := NewLogger(&Config{Level: zapcore.InfoLevel, Format: "xml"})
	assert.Error(t, err)
}

func TestFromSettings(t *testing.T) {
	cfg, err := FromSettings("debug", "console", "")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level)

	_, err = FromSettings("verbose", "json", "")
	assert.Error(t, err)
}

func TestContextFields(t *testing.T) {
	ctx := WithUser(context.Background(), "alice@example.com")
	ctx = WithSession(ctx, "session-alice-1")

	log := NewTestLogger()
	log.Info(ctx, "detail refreshed")

	entries := log.FilterMessage("detail refreshed").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "alice@example.com", fields["user.email"])
	assert.Equal(t, "session-alice-1", fields["session.id"])
}

func TestLogger_Named(t *testing.T) {
	log := NewTestLogger()
	log.Named("poller").Info(context.Background(), "tick")

	entries := log.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "poller", entries[0].LoggerName)
}
