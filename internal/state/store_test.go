package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := Open(dir)
	assert.Empty(t, s.Get(KeyActiveTab))

	require.NoError(t, s.Set(KeyActiveTab, "prompts"))
	require.NoError(t, s.Set(KeyPromptStage, "intro"))

	// A fresh store sees the persisted values.
	reopened := Open(dir)
	assert.Equal(t, "prompts", reopened.Get(KeyActiveTab))
	assert.Equal(t, "intro", reopened.Get(KeyPromptStage))
}

func TestStore_CorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("{not json"), 0600))

	s := Open(dir)
	assert.Empty(t, s.Get(KeyActiveTab))
	require.NoError(t, s.Set(KeyActiveTab, "sessions"))
	assert.Equal(t, "sessions", Open(dir).Get(KeyActiveTab))
}

func TestStore_SetUnchangedSkipsWrite(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir)
	require.NoError(t, s.Set(KeyActiveTab, "sessions"))

	info1, err := os.Stat(filepath.Join(dir, fileName))
	require.NoError(t, err)

	require.NoError(t, s.Set(KeyActiveTab, "sessions"))
	info2, err := os.Stat(filepath.Join(dir, fileName))
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime())
}
