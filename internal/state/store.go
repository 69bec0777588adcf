// Package state persists the small bits of UI state that survive a
// restart: the last-active top-level tab and the last-open prompt
// stage. They live in a JSON file next to the config.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Keys for the persisted values. Fixed strings, stable across versions.
const (
	KeyActiveTab   = "active_tab"
	KeyPromptStage = "active_prompts_stage"
)

const fileName = "ui-state.json"

// Store reads and writes the persisted UI state. The zero value is not
// usable; construct with Open.
type Store struct {
	path   string
	values map[string]string
}

// Open loads the state file from dir, tolerating a missing or corrupt
// file by starting empty.
func Open(dir string) *Store {
	s := &Store{
		path:   filepath.Join(dir, fileName),
		values: map[string]string{},
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return s
	}
	// A corrupt state file is discarded, not fatal.
	_ = json.Unmarshal(data, &s.values)
	if s.values == nil {
		s.values = map[string]string{}
	}
	return s
}

// Get returns the stored value for key, or "".
func (s *Store) Get(key string) string {
	return s.values[key]
}

// Set stores value under key and writes the file. Write failures are
// returned so the caller can log them; they never break the UI.
func (s *Store) Set(key, value string) error {
	if s.values[key] == value {
		return nil
	}
	s.values[key] = value
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ui state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write ui state: %w", err)
	}
	return nil
}
