package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/api"
	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/logging"
)

// fetchTimeout bounds the context of every command-issued request, on
// top of the client's own HTTP timeout.
const fetchTimeout = 15 * time.Second

// Poll tick messages. Each carries the generation of the loop that
// scheduled it; ticks from a superseded or stopped loop are discarded.
type listTickMsg struct{ gen uint64 }
type detailTickMsg struct{ gen uint64 }
type healthTickMsg struct{ gen uint64 }

// Fetch result messages.
type usersLoadedMsg struct {
	gen       uint64
	users     []api.User
	demo      bool
	latencyMS float64
	err       error
}

// sessionsLoadedMsg carries the sessions-scope generation of the
// machine at fetch time; a result fetched under a superseded scope is
// discarded.
type sessionsLoadedMsg struct {
	gen      uint64
	email    string
	sessions []api.Session
	err      error
}

// detailLoadedMsg carries two generations: gen ties the result to the
// live detail poll loop, scope ties it to the machine's details scope.
type detailLoadedMsg struct {
	gen       uint64
	scope     uint64
	id        string
	email     string
	session   api.Session
	latencyMS float64
	err       error
}

type healthMsg struct {
	gen    uint64
	server bool
	bot    bool
}

// Mutation result messages.
type sessionDeletedMsg struct {
	id    string
	email string
	err   error
}

type allDeletedMsg struct {
	email string
	err   error
}

type promptsLoadedMsg struct {
	stages []api.PromptStage
	err    error
}

type stageSavedMsg struct {
	id  string
	err error
}

type coachesLoadedMsg struct {
	coaches []api.Coach
	err     error
}

type coachSavedMsg struct {
	id  string
	err error
}

// UI housekeeping messages. Both carry a sequence number so the
// expiry of a superseded toast or flash cannot clear a newer one.
type toastExpireMsg struct{ seq int }
type flashExpireMsg struct{ seq int }

// tick schedules msg after interval. Loops reschedule only after the
// previous tick's work completed, so slow responses stretch the
// interval instead of stacking ticks.
func tick(interval time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return msg
	})
}

func fetchUsers(client *api.Client, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		start := time.Now()
		users, demo, err := client.ListUsers(ctx)
		return usersLoadedMsg{
			gen:       gen,
			users:     users,
			demo:      demo,
			latencyMS: float64(time.Since(start).Milliseconds()),
			err:       err,
		}
	}
}

func fetchSessions(client *api.Client, gen uint64, email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		sessions, err := client.ListSessions(logging.WithUser(ctx, email), email)
		return sessionsLoadedMsg{gen: gen, email: email, sessions: sessions, err: err}
	}
}

func fetchDetail(client *api.Client, gen, scope uint64, id, email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		ctx = logging.WithSession(logging.WithUser(ctx, email), id)

		start := time.Now()
		session, err := client.GetSession(ctx, id, email)
		return detailLoadedMsg{
			gen:       gen,
			scope:     scope,
			id:        id,
			email:     email,
			session:   session,
			latencyMS: float64(time.Since(start).Milliseconds()),
			err:       err,
		}
	}
}

func checkHealth(client *api.Client, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		return healthMsg{
			gen:    gen,
			server: client.Health(ctx),
			bot:    client.BotHealth(ctx),
		}
	}
}

func deleteSession(client *api.Client, id, email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		err := client.DeleteSession(logging.WithSession(logging.WithUser(ctx, email), id), id, email)
		return sessionDeletedMsg{id: id, email: email, err: err}
	}
}

func deleteAllSessions(client *api.Client, email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		err := client.DeleteAllSessions(logging.WithUser(ctx, email), email)
		return allDeletedMsg{email: email, err: err}
	}
}

func fetchPrompts(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		stages, err := client.GetPrompts(ctx)
		return promptsLoadedMsg{stages: stages, err: err}
	}
}

func savePromptStage(client *api.Client, stage api.PromptStage) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		err := client.SavePromptStage(ctx, stage)
		return stageSavedMsg{id: stage.ID, err: err}
	}
}

func fetchCoaches(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		coaches, err := client.ListCoaches(ctx)
		return coachesLoadedMsg{coaches: coaches, err: err}
	}
}

func saveCoach(client *api.Client, coach api.Coach) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		err := client.SaveCoach(ctx, coach)
		return coachSavedMsg{id: coach.ID, err: err}
	}
}
