package api

import "time"

// User is one coached user, keyed by email.
type User struct {
	Email        string    `json:"email"`
	SessionCount int       `json:"session_count"`
	FirstSession time.Time `json:"first_session"`
	LastSession  time.Time `json:"last_session"`
	// Sessions is optionally attached by the backend when it eagerly
	// embeds the user's sessions in the list response.
	Sessions []Session `json:"sessions,omitempty"`
}

// Session is one recorded wellness-coaching conversation. The backend
// calls these interviews.
type Session struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Transcription string    `json:"transcription"`
	Summary       string    `json:"summary"`
	// Wellness carries the structured payload extracted from the
	// conversation. Keys are open-ended (age, weight, stress_level,
	// sleep_hours, goals, ...).
	Wellness  map[string]any `json:"wellness_data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Prompt is a single question/extraction pair within a stage.
type Prompt struct {
	ID         string `json:"id"`
	Question   string `json:"question"`
	Extraction string `json:"extraction"`
}

// PromptStage is a named conversation stage owning an ordered set of
// prompts.
type PromptStage struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Prompts []Prompt `json:"prompts"`
}

// Coach is a coach persona with its own system prompt.
type Coach struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// Health is the main backend's liveness response.
type Health struct {
	Status  string `json:"status"`
	Uptime  int64  `json:"uptime,omitempty"`
	Version string `json:"version,omitempty"`
}
