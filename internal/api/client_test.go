package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/logging"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "", 2*time.Second, logging.NewNop()), srv
}

func TestListUsers(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users", r.URL.Path)
		json.NewEncoder(w).Encode([]User{{Email: "alice@example.com", SessionCount: 3}})
	}))

	users, demo, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	assert.False(t, demo)
	require.Len(t, users, 1)
	assert.Equal(t, "alice@example.com", users[0].Email)
}

func TestListUsers_DemoFallbackOnTransportFailure(t *testing.T) {
	// Point the client at a server that is already gone.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := New(srv.URL, "", time.Second, logging.NewNop())

	users, demo, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	assert.True(t, demo)
	require.Len(t, users, 3)
	assert.Equal(t, "alice@example.com", users[0].Email)
}

func TestListUsers_NoDemoFallbackOnServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, demo, err := client.ListUsers(context.Background())
	require.Error(t, err)
	assert.False(t, demo)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
}

func TestListSessions_SortedNewestFirst(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/interviews", r.URL.Path)
		assert.Equal(t, "alice@example.com", r.URL.Query().Get("email"))
		json.NewEncoder(w).Encode([]Session{
			{ID: "old", Email: "alice@example.com", CreatedAt: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)},
			{ID: "new", Email: "alice@example.com", CreatedAt: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		})
	}))

	sessions, err := client.ListSessions(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, "old", sessions[1].ID)
}

func TestListSessions_ResultsEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"id":"session-bob-1","email":"bob@example.com"}]}`))
	}))

	sessions, err := client.ListSessions(context.Background(), "bob@example.com")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "session-bob-1", sessions[0].ID)
}

func TestGetSession(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Session{
			{ID: "session-alice-1", Email: "alice@example.com", Summary: "initial consultation"},
		})
	}))

	s, err := client.GetSession(context.Background(), "session-alice-1", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "initial consultation", s.Summary)

	_, err = client.GetSession(context.Background(), "session-alice-9", "alice@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSession(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}))

	err := client.DeleteSession(context.Background(), "session-alice-1", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/interviews/session-alice-1", gotPath)
	assert.Equal(t, "alice@example.com", gotBody["email"])
}

func TestDeleteSession_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Session not found"}`, http.StatusNotFound)
	}))

	err := client.DeleteSession(context.Background(), "gone", "alice@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAllSessions(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))

	err := client.DeleteAllSessions(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "/api/interviews", gotPath)
	assert.Equal(t, "alice@example.com", gotBody["email"])
}

func TestPromptsRoundTrip(t *testing.T) {
	var savedPath string
	var savedStage PromptStage
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode([]PromptStage{
				{ID: "intro", Name: "Introduction", Prompts: []Prompt{{ID: "p1", Question: "How are you feeling today?"}}},
			})
		case http.MethodPut:
			savedPath = r.URL.Path
			json.NewDecoder(r.Body).Decode(&savedStage)
			w.WriteHeader(http.StatusOK)
		}
	}))

	stages, err := client.GetPrompts(context.Background())
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, "Introduction", stages[0].Name)

	stages[0].Prompts[0].Question = "What brings you here?"
	require.NoError(t, client.SavePromptStage(context.Background(), stages[0]))
	assert.Equal(t, "/api/prompts/intro", savedPath)
	assert.Equal(t, "What brings you here?", savedStage.Prompts[0].Question)
}

func TestCoachesRoundTrip(t *testing.T) {
	var savedPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode([]Coach{{ID: "coach-1", Name: "Maya", Prompt: "You are a supportive wellness coach."}})
		case http.MethodPut:
			savedPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}
	}))

	coaches, err := client.ListCoaches(context.Background())
	require.NoError(t, err)
	require.Len(t, coaches, 1)

	require.NoError(t, client.SaveCoach(context.Background(), coaches[0]))
	assert.Equal(t, "/api/coaches/coach-1", savedPath)
}

func TestHealth_FallbackToUsers(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode([]User{})
	}))

	assert.True(t, client.Health(context.Background()))
}

func TestHealth_Down(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := New(srv.URL, "", time.Second, logging.NewNop())

	assert.False(t, client.Health(context.Background()))
}

func TestBotHealth_FallbackChain(t *testing.T) {
	var probed []string
	bot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probed = append(probed, r.URL.Path)
		if r.URL.Path == "/ping" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer bot.Close()

	client := New("http://unused.invalid", bot.URL, time.Second, logging.NewNop())
	assert.True(t, client.BotHealth(context.Background()))
	assert.Equal(t, []string{"/health", "/status", "/ping"}, probed)
}

func TestBotHealth_Unconfigured(t *testing.T) {
	client := New("http://unused.invalid", "", time.Second, logging.NewNop())
	assert.False(t, client.BotHealth(context.Background()))
}

func TestMalformedJSONSurfacesError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [`))
	}))

	_, err := client.ListSessions(context.Background(), "alice@example.com")
	require.Error(t, err)
	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}
