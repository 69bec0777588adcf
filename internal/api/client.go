// Package api wraps the wlnx backend's REST surface with typed fetch
// operations. It normalizes the inconsistent response envelopes the
// backend has shipped over time and degrades gracefully when the
// backend is unreachable.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/logging"
)

const maxResponseBytes = 8 << 20 // 8MB

// Client talks to the wlnx API server and, optionally, the bot service.
type Client struct {
	baseURL string
	botURL  string
	client  *http.Client
	log     *logging.Logger
}

// New creates a client. botURL may be empty; bot health then reports
// down without probing. The timeout bounds every request; there is no
// retry logic here, polling is the retry mechanism.
func New(baseURL, botURL string, timeout time.Duration, log *logging.Logger) *Client {
	if log == nil {
		log = logging.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		botURL:  botURL,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log.Named("api"),
	}
}

// BaseURL returns the configured API server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListUsers fetches all users. On outright transport failure it falls
// back to the fixed demo dataset so the UI stays populated; the second
// return value reports whether demo data was served.
func (c *Client) ListUsers(ctx context.Context) ([]User, bool, error) {
	body, err := c.get(ctx, c.baseURL+"/api/users", nil)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, false, err
		}
		c.log.Warn(ctx, "users endpoint unreachable, serving demo data", zap.Error(err))
		return DemoUsers(), true, nil
	}

	users, err := decodeList[User](body, "users")
	if err != nil {
		return nil, false, err
	}
	return users, false, nil
}

// ListSessions fetches the sessions owned by email, newest first.
func (c *Client) ListSessions(ctx context.Context, email string) ([]Session, error) {
	q := url.Values{}
	q.Set("email", email)
	body, err := c.get(ctx, c.baseURL+"/api/interviews", q)
	if err != nil {
		return nil, err
	}

	sessions, err := decodeList[Session](body, "interviews")
	if err != nil {
		return nil, err
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// GetSession fetches a single session by re-listing the owner's
// sessions. The backend has no single-session endpoint; the detail
// poller relies on this. A session missing from the result reports
// ErrNotFound.
func (c *Client) GetSession(ctx context.Context, id, email string) (Session, error) {
	sessions, err := c.ListSessions(ctx, email)
	if err != nil {
		return Session{}, err
	}
	for _, s := range sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
}

// DeleteSession deletes one session. The backend requires the owner
// email in the request body.
func (c *Client) DeleteSession(ctx context.Context, id, email string) error {
	target := fmt.Sprintf("%s/api/interviews/%s", c.baseURL, url.PathEscape(id))
	return c.deleteWithEmail(ctx, target, email)
}

// DeleteAllSessions deletes every session owned by email.
func (c *Client) DeleteAllSessions(ctx context.Context, email string) error {
	return c.deleteWithEmail(ctx, c.baseURL+"/api/interviews", email)
}

// GetPrompts fetches the prompt configuration stages.
func (c *Client) GetPrompts(ctx context.Context) ([]PromptStage, error) {
	body, err := c.get(ctx, c.baseURL+"/api/prompts", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[PromptStage](body, "stages", "prompts")
}

// SavePromptStage persists one stage's prompts.
func (c *Client) SavePromptStage(ctx context.Context, stage PromptStage) error {
	target := fmt.Sprintf("%s/api/prompts/%s", c.baseURL, url.PathEscape(stage.ID))
	return c.put(ctx, target, stage)
}

// ListCoaches fetches the coach personas.
func (c *Client) ListCoaches(ctx context.Context) ([]Coach, error) {
	body, err := c.get(ctx, c.baseURL+"/api/coaches", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Coach](body, "coaches")
}

// SaveCoach persists one coach's prompt.
func (c *Client) SaveCoach(ctx context.Context, coach Coach) error {
	target := fmt.Sprintf("%s/api/coaches/%s", c.baseURL, url.PathEscape(coach.ID))
	return c.put(ctx, target, coach)
}

// Health probes the main backend: /health first, /api/users as
// fallback for older deployments without a health endpoint.
func (c *Client) Health(ctx context.Context) bool {
	for _, path := range []string{"/health", "/api/users"} {
		if _, err := c.get(ctx, c.baseURL+path, nil); err == nil {
			return true
		}
	}
	return false
}

// BotHealth probes the bot service through its fallback chain. A
// missing bot service is normal and reports down without error.
func (c *Client) BotHealth(ctx context.Context) bool {
	if c.botURL == "" {
		return false
	}
	for _, path := range []string{"/health", "/status", "/ping"} {
		if _, err := c.get(ctx, c.botURL+path, nil); err == nil {
			return true
		}
	}
	return false
}

// get issues a GET and returns the body, or a StatusError on non-2xx.
func (c *Client) get(ctx context.Context, target string, query url.Values) ([]byte, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %s: %w", target, err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

// put issues a PUT with a JSON body.
func (c *Client) put(ctx context.Context, target string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req)
	return err
}

// deleteWithEmail issues a DELETE carrying the owner email as a JSON
// body, which is how the backend authorizes session removal.
func (c *Client) deleteWithEmail(ctx context.Context, target, email string) error {
	data, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
