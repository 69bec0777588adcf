// Package tui implements the terminal control panel: a bubbletea
// program with three cascading panes (users, sessions, session
// details), top-level tabs for prompt and coach administration, and
// background refresh loops that only repaint what actually changed.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/api"
	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/config"
	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/logging"
	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/panel"
	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/poll"
	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/state"
)

// Top-level tab keys.
const (
	tabSessions = "sessions"
	tabPrompts  = "prompts"
	tabCoaches  = "coaches"
)

// Detail tab keys.
const (
	tabSummary    = "summary"
	tabTranscript = "transcript"
	tabWellness   = "wellness"
)

const (
	flashDuration = 1500 * time.Millisecond
	toastDuration = 3 * time.Second
	historySize   = 60
)

// focusArea identifies which pane receives movement keys.
type focusArea int

const (
	focusUsers focusArea = iota
	focusSessions
	focusDetails
)

// confirmState is a pending destructive action awaiting y/n.
type confirmState struct {
	pending bool
	all     bool
	id      string
	email   string
}

// editState is an in-progress prompt or coach edit.
type editState struct {
	active bool
	coach  bool
	// stageIdx/promptIdx locate the prompt being edited; coachIdx the
	// coach. Indices are into the model's loaded slices.
	stageIdx  int
	promptIdx int
	coachIdx  int
}

// Model is the bubbletea model for the control panel.
type Model struct {
	client  *api.Client
	log     *logging.Logger
	polling config.PollingConfig
	uistate *state.Store

	machine    *panel.Machine
	listPoll   *poll.Handle
	detailPoll *poll.Handle
	healthPoll *poll.Handle

	// Users pane.
	users       []api.User
	demo        bool
	usersErr    error
	usersCursor int
	usersFlash  bool

	// Sessions pane.
	sessions       []api.Session
	sessionsErr    error
	sessionsCursor int
	sessionsFlash  bool

	// Details pane.
	detail        *api.Session
	detailErr     error
	detailMissing bool
	detailFlash   poll.SessionDiff
	detailTabs    TabGroup
	transcript    viewport.Model

	// Top-level tabs and their data.
	appTabs   TabGroup
	stageTabs TabGroup
	prompts   []api.PromptStage
	promptsErr error
	coaches   []api.Coach
	coachesErr error
	promptCursor int
	coachCursor  int

	editor textarea.Model
	edit   editState

	confirm  confirmState
	inflight map[string]bool

	serverUp bool
	botUp    bool
	latency  []float64
	stress   progress.Model

	toast    string
	toastErr bool
	toastSeq int
	flashSeq int

	focus    focusArea
	width    int
	height   int
	quitting bool
}

// New builds the model. The last-active tab is restored from the
// persisted UI state.
func New(cfg *config.Config, client *api.Client, log *logging.Logger, st *state.Store) Model {
	editor := textarea.New()
	editor.CharLimit = 0
	editor.ShowLineNumbers = false

	m := Model{
		client:  client,
		log:     log.Named("tui"),
		polling: cfg.Polling,
		uistate: st,

		machine:    panel.New(),
		listPoll:   &poll.Handle{},
		detailPoll: &poll.Handle{},
		healthPoll: &poll.Handle{},

		appTabs: NewTabGroup(
			Tab{Key: tabSessions, Title: "Sessions"},
			Tab{Key: tabPrompts, Title: "Prompts"},
			Tab{Key: tabCoaches, Title: "Coaches"},
		),
		detailTabs: NewTabGroup(
			Tab{Key: tabSummary, Title: "Summary"},
			Tab{Key: tabTranscript, Title: "Transcript"},
			Tab{Key: tabWellness, Title: "Wellness"},
		),
		transcript: viewport.New(60, 12),
		editor:     editor,
		inflight:   map[string]bool{},
		stress: progress.New(
			progress.WithGradient("#00ff00", "#ff0000"),
			progress.WithWidth(24),
			progress.WithoutPercentage(),
		),
	}

	if saved := st.Get(state.KeyActiveTab); saved != "" {
		m.appTabs.Activate(saved)
	}
	return m
}

// Init starts the users-list and health loops and fires the first
// fetches immediately.
func (m Model) Init() tea.Cmd {
	listGen := m.listPoll.Start()
	healthGen := m.healthPoll.Start()
	cmds := []tea.Cmd{
		fetchUsers(m.client, listGen),
		checkHealth(m.client, healthGen),
	}
	switch m.appTabs.Active() {
	case tabPrompts:
		cmds = append(cmds, fetchPrompts(m.client))
	case tabCoaches:
		cmds = append(cmds, fetchCoaches(m.client))
	}
	return tea.Batch(cmds...)
}

// Update is the single message pump. Every state transition in the
// panel flows through here.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.transcript.Width = max(20, msg.Width/3-4)
		m.transcript.Height = max(6, msg.Height-14)
		m.editor.SetWidth(max(30, msg.Width-10))
		m.editor.SetHeight(max(4, msg.Height/3))
		return m, nil

	case listTickMsg:
		return m.handleListTick(msg)
	case detailTickMsg:
		return m.handleDetailTick(msg)
	case healthTickMsg:
		return m.handleHealthTick(msg)

	case usersLoadedMsg:
		return m.handleUsersLoaded(msg)
	case sessionsLoadedMsg:
		return m.handleSessionsLoaded(msg)
	case detailLoadedMsg:
		return m.handleDetailLoaded(msg)
	case healthMsg:
		return m.handleHealth(msg)

	case sessionDeletedMsg:
		return m.handleSessionDeleted(msg)
	case allDeletedMsg:
		return m.handleAllDeleted(msg)

	case promptsLoadedMsg:
		return m.handlePromptsLoaded(msg)
	case stageSavedMsg:
		return m.handleStageSaved(msg)
	case coachesLoadedMsg:
		return m.handleCoachesLoaded(msg)
	case coachSavedMsg:
		return m.handleCoachSaved(msg)

	case toastExpireMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case flashExpireMsg:
		// Only the latest flash's expiry clears; a stale expiry would
		// cut a newer flash short.
		if msg.seq == m.flashSeq {
			m.usersFlash = false
			m.sessionsFlash = false
			m.detailFlash = poll.SessionDiff{}
		}
		return m, nil
	}

	return m, nil
}

// --- tick handlers -------------------------------------------------

func (m Model) handleListTick(msg listTickMsg) (tea.Model, tea.Cmd) {
	if !m.listPoll.Current(msg.gen) {
		return m, nil
	}
	cmds := []tea.Cmd{fetchUsers(m.client, msg.gen)}
	// The coarse loop also refreshes the open sessions pane.
	if email := m.machine.SelectedUser(); email != "" && m.machine.SessionsOpen() {
		cmds = append(cmds, fetchSessions(m.client, m.machine.SessionsGen(), email))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleDetailTick(msg detailTickMsg) (tea.Model, tea.Cmd) {
	if !m.detailPoll.Current(msg.gen) {
		return m, nil
	}
	id := m.machine.SelectedSession()
	email := m.machine.SelectedUser()
	if id == "" || !m.machine.DetailsOpen() {
		return m, nil
	}
	return m, fetchDetail(m.client, msg.gen, m.machine.DetailGen(), id, email)
}

func (m Model) handleHealthTick(msg healthTickMsg) (tea.Model, tea.Cmd) {
	if !m.healthPoll.Current(msg.gen) {
		return m, nil
	}
	return m, checkHealth(m.client, msg.gen)
}

// --- fetch result handlers -----------------------------------------

func (m Model) handleUsersLoaded(msg usersLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.listPoll.Current(msg.gen) {
		return m, nil
	}
	// The loop reschedules itself only after the fetch landed.
	cmds := []tea.Cmd{tick(m.polling.ListInterval.Duration(), listTickMsg{gen: msg.gen})}

	if msg.err != nil {
		m.usersErr = msg.err
		m.log.Warn(nil, "users refresh failed", zap.Error(msg.err))
		return m, tea.Batch(cmds...)
	}
	m.usersErr = nil
	m.demo = msg.demo
	m.latency = appendToHistory(m.latency, msg.latencyMS)

	if poll.UsersChanged(m.users, msg.users) {
		m.users = msg.users
		m.usersFlash = true
		cmds = append(cmds, m.flashCmd())
		m.appTabs.MarkDirty(tabSessions)
	}
	if m.usersCursor >= len(m.users) {
		m.usersCursor = max(0, len(m.users)-1)
	}
	m.machine.UsersLoaded()

	// A selected user that vanished from the list closes the cascade.
	if email := m.machine.SelectedUser(); email != "" && !m.hasUser(email) {
		m.machine.CloseSessions()
		m.detailPoll.Stop()
		m.sessions = nil
		m.detail = nil
		m.focus = focusUsers
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleSessionsLoaded(msg sessionsLoadedMsg) (tea.Model, tea.Cmd) {
	// Results fetched under a superseded scope are stale. The scope
	// generation also catches navigating away from a user and back
	// before an old fetch lands; email equality alone would not.
	if !m.machine.SessionsCurrent(msg.gen) || msg.email != m.machine.SelectedUser() {
		return m, nil
	}
	if msg.err != nil {
		m.sessionsErr = msg.err
		m.log.Warn(nil, "sessions refresh failed",
			zap.String("user.email", msg.email), zap.Error(msg.err))
		return m, nil
	}
	m.sessionsErr = nil

	var cmds []tea.Cmd
	if poll.SessionsChanged(m.sessions, msg.sessions) {
		m.sessions = msg.sessions
		m.sessionsFlash = true
		cmds = append(cmds, m.flashCmd())
	}
	if m.sessionsCursor >= len(m.sessions) {
		m.sessionsCursor = max(0, len(m.sessions)-1)
	}

	// The open session disappearing mid-view closes the details pane.
	if id := m.machine.SelectedSession(); id != "" && !m.hasSession(id) {
		m.machine.CloseDetails()
		m.detailPoll.Stop()
		m.detail = nil
		if m.focus == focusDetails {
			m.focus = focusSessions
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleDetailLoaded(msg detailLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.detailPoll.Current(msg.gen) || !m.machine.DetailCurrent(msg.scope) ||
		msg.id != m.machine.SelectedSession() {
		return m, nil
	}
	cmds := []tea.Cmd{tick(m.polling.DetailInterval.Duration(), detailTickMsg{gen: msg.gen})}

	if msg.err != nil {
		if api.IsNotFound(msg.err) {
			m.detailMissing = true
			m.detailErr = nil
		} else {
			m.detailErr = msg.err
			m.log.Warn(nil, "detail refresh failed",
				zap.String("session.id", msg.id), zap.Error(msg.err))
		}
		return m, tea.Batch(cmds...)
	}
	m.detailErr = nil
	m.detailMissing = false
	m.latency = appendToHistory(m.latency, msg.latencyMS)

	next := msg.session
	if m.detail == nil {
		m.detail = &next
		m.transcript.SetContent(next.Transcription)
		return m, tea.Batch(cmds...)
	}

	diff := poll.DiffSession(*m.detail, next)
	if !diff.Any() {
		return m, tea.Batch(cmds...)
	}
	m.detail = &next
	m.detailFlash = diff
	cmds = append(cmds, m.flashCmd())

	// Only the panes whose field moved are touched; the active tab
	// and the transcript scroll position survive a summary-only edit.
	if diff.Transcript {
		atBottom := m.transcript.AtBottom()
		m.transcript.SetContent(next.Transcription)
		if atBottom {
			m.transcript.GotoBottom()
		}
	}
	if diff.Summary && m.detailTabs.Active() != tabSummary {
		m.detailTabs.MarkDirty(tabSummary)
	}
	if diff.Transcript && m.detailTabs.Active() != tabTranscript {
		m.detailTabs.MarkDirty(tabTranscript)
	}
	if diff.Wellness && m.detailTabs.Active() != tabWellness {
		m.detailTabs.MarkDirty(tabWellness)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleHealth(msg healthMsg) (tea.Model, tea.Cmd) {
	if !m.healthPoll.Current(msg.gen) {
		return m, nil
	}
	if msg.server != m.serverUp || msg.bot != m.botUp {
		m.log.Info(nil, "backend status changed",
			zap.Bool("server", msg.server), zap.Bool("bot", msg.bot))
	}
	m.serverUp = msg.server
	m.botUp = msg.bot
	return m, tick(m.polling.HealthInterval.Duration(), healthTickMsg{gen: msg.gen})
}

// --- mutation handlers ---------------------------------------------

func (m Model) handleSessionDeleted(msg sessionDeletedMsg) (tea.Model, tea.Cmd) {
	delete(m.inflight, msg.id)
	if msg.err != nil {
		// The optimistic removal was wrong; reload the pane to put the
		// row back.
		cmd := m.showToast("delete failed: "+msg.err.Error(), true)
		m.log.Error(nil, "session delete failed",
			zap.String("session.id", msg.id), zap.Error(msg.err))
		if msg.email == m.machine.SelectedUser() && m.machine.SessionsOpen() {
			return m, tea.Batch(cmd, fetchSessions(m.client, m.machine.SessionsGen(), msg.email))
		}
		return m, cmd
	}

	cmds := []tea.Cmd{m.showToast("session "+shortID(msg.id)+" deleted", false)}
	// Session counts on the users pane changed too. Restarting the
	// loop keeps it single: the old tick chain dies at its next
	// staleness check instead of running alongside this fetch's.
	if m.listPoll.Active() {
		cmds = append(cmds, fetchUsers(m.client, m.listPoll.Start()))
	}
	if msg.email == m.machine.SelectedUser() && m.machine.SessionsOpen() {
		cmds = append(cmds, fetchSessions(m.client, m.machine.SessionsGen(), msg.email))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleAllDeleted(msg allDeletedMsg) (tea.Model, tea.Cmd) {
	delete(m.inflight, "all:"+msg.email)
	if msg.err != nil {
		cmd := m.showToast("delete all failed: "+msg.err.Error(), true)
		m.log.Error(nil, "delete all sessions failed",
			zap.String("user.email", msg.email), zap.Error(msg.err))
		if msg.email == m.machine.SelectedUser() && m.machine.SessionsOpen() {
			return m, tea.Batch(cmd, fetchSessions(m.client, m.machine.SessionsGen(), msg.email))
		}
		return m, cmd
	}

	cmds := []tea.Cmd{m.showToast("all sessions deleted for "+msg.email, false)}
	if m.listPoll.Active() {
		cmds = append(cmds, fetchUsers(m.client, m.listPoll.Start()))
	}
	if msg.email == m.machine.SelectedUser() && m.machine.SessionsOpen() {
		cmds = append(cmds, fetchSessions(m.client, m.machine.SessionsGen(), msg.email))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handlePromptsLoaded(msg promptsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.promptsErr = msg.err
		m.log.Warn(nil, "prompts load failed", zap.Error(msg.err))
		return m, nil
	}
	m.promptsErr = nil
	m.prompts = msg.stages

	tabs := make([]Tab, 0, len(msg.stages))
	for _, s := range msg.stages {
		tabs = append(tabs, Tab{Key: s.ID, Title: s.Name})
	}
	active := m.stageTabs.Active()
	if active == "" {
		active = m.uistate.Get(state.KeyPromptStage)
	}
	m.stageTabs = NewTabGroup(tabs...)
	m.stageTabs.Activate(active)
	if m.promptCursor >= m.activeStagePrompts() {
		m.promptCursor = max(0, m.activeStagePrompts()-1)
	}
	return m, nil
}

func (m Model) handleStageSaved(msg stageSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Error(nil, "prompt stage save failed",
			zap.String("stage.id", msg.id), zap.Error(msg.err))
		return m, tea.Batch(m.showToast("save failed: "+msg.err.Error(), true), fetchPrompts(m.client))
	}
	return m, tea.Batch(m.showToast("stage saved", false), fetchPrompts(m.client))
}

func (m Model) handleCoachesLoaded(msg coachesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.coachesErr = msg.err
		m.log.Warn(nil, "coaches load failed", zap.Error(msg.err))
		return m, nil
	}
	m.coachesErr = nil
	m.coaches = msg.coaches
	if m.coachCursor >= len(m.coaches) {
		m.coachCursor = max(0, len(m.coaches)-1)
	}
	return m, nil
}

func (m Model) handleCoachSaved(msg coachSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Error(nil, "coach save failed",
			zap.String("coach.id", msg.id), zap.Error(msg.err))
		return m, tea.Batch(m.showToast("save failed: "+msg.err.Error(), true), fetchCoaches(m.client))
	}
	return m, tea.Batch(m.showToast("coach saved", false), fetchCoaches(m.client))
}

// --- key handling --------------------------------------------------

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// An open editor owns the keyboard except for save and cancel.
	if m.edit.active {
		return m.handleEditorKey(msg)
	}

	// A pending confirmation only listens for y/n.
	if m.confirm.pending {
		switch msg.String() {
		case "y", "Y":
			return m.executeConfirmed()
		case "n", "N", "esc":
			m.confirm = confirmState{}
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "1":
		return m.activateAppTab(tabSessions)
	case "2":
		return m.activateAppTab(tabPrompts)
	case "3":
		return m.activateAppTab(tabCoaches)

	case "r":
		return m.manualRefresh()
	}

	switch m.appTabs.Active() {
	case tabSessions:
		return m.handleSessionsKey(msg)
	case tabPrompts:
		return m.handlePromptsKey(msg)
	case tabCoaches:
		return m.handleCoachesKey(msg)
	}
	return m, nil
}

func (m Model) handleSessionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		return m.moveCursor(1)
	case "k", "up":
		return m.moveCursor(-1)

	case "h", "left":
		if m.focus > focusUsers {
			m.focus--
		}
		return m, nil
	case "l", "right":
		if m.focus == focusUsers && m.machine.SessionsOpen() {
			m.focus = focusSessions
		} else if m.focus == focusSessions && m.machine.DetailsOpen() {
			m.focus = focusDetails
		}
		return m, nil

	case "enter":
		return m.selectUnderCursor()

	case "esc":
		return m.closeTopPane()

	case "tab", "]":
		if m.machine.DetailsOpen() {
			m.detailTabs.Next()
		}
		return m, nil
	case "shift+tab", "[":
		if m.machine.DetailsOpen() {
			m.detailTabs.Prev()
		}
		return m, nil

	case "d":
		return m.requestDelete(false)
	case "D":
		return m.requestDelete(true)
	}

	if m.focus == focusDetails && m.detailTabs.Active() == tabTranscript {
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handlePromptsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left", "[", "shift+tab":
		m.stageTabs.Prev()
		m.promptCursor = 0
		m.persistStage()
		return m, nil
	case "l", "right", "]", "tab":
		m.stageTabs.Next()
		m.promptCursor = 0
		m.persistStage()
		return m, nil
	case "j", "down":
		if m.promptCursor < m.activeStagePrompts()-1 {
			m.promptCursor++
		}
		return m, nil
	case "k", "up":
		if m.promptCursor > 0 {
			m.promptCursor--
		}
		return m, nil
	case "enter":
		return m.beginPromptEdit()
	}
	return m, nil
}

func (m Model) handleCoachesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.coachCursor < len(m.coaches)-1 {
			m.coachCursor++
		}
		return m, nil
	case "k", "up":
		if m.coachCursor > 0 {
			m.coachCursor--
		}
		return m, nil
	case "enter":
		return m.beginCoachEdit()
	}
	return m, nil
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.edit = editState{}
		m.editor.Blur()
		return m, nil
	case "ctrl+s":
		return m.saveEdit()
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// --- key helpers ---------------------------------------------------

func (m Model) activateAppTab(key string) (tea.Model, tea.Cmd) {
	if key == m.appTabs.Active() {
		return m, nil
	}
	m.appTabs.Activate(key)
	if err := m.uistate.Set(state.KeyActiveTab, key); err != nil {
		m.log.Warn(nil, "ui state write failed", zap.Error(err))
	}
	switch key {
	case tabPrompts:
		return m, fetchPrompts(m.client)
	case tabCoaches:
		return m, fetchCoaches(m.client)
	}
	return m, nil
}

// manualRefresh restarts the list loop so the fetch happens now and
// the next scheduled tick of the old loop dies stale.
func (m Model) manualRefresh() (tea.Model, tea.Cmd) {
	gen := m.listPoll.Start()
	cmds := []tea.Cmd{fetchUsers(m.client, gen)}
	if email := m.machine.SelectedUser(); email != "" && m.machine.SessionsOpen() {
		cmds = append(cmds, fetchSessions(m.client, m.machine.SessionsGen(), email))
	}
	switch m.appTabs.Active() {
	case tabPrompts:
		cmds = append(cmds, fetchPrompts(m.client))
	case tabCoaches:
		cmds = append(cmds, fetchCoaches(m.client))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) moveCursor(delta int) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusUsers:
		m.usersCursor = clamp(m.usersCursor+delta, 0, len(m.users)-1)
	case focusSessions:
		m.sessionsCursor = clamp(m.sessionsCursor+delta, 0, len(m.sessions)-1)
	case focusDetails:
		if m.detailTabs.Active() == tabTranscript {
			if delta > 0 {
				m.transcript.LineDown(1)
			} else {
				m.transcript.LineUp(1)
			}
		}
	}
	return m, nil
}

func (m Model) selectUnderCursor() (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusUsers:
		if m.usersCursor >= len(m.users) {
			return m, nil
		}
		email := m.users[m.usersCursor].Email
		changed := m.machine.SelectUser(email)
		m.focus = focusSessions
		if !changed {
			return m, nil
		}
		// New scope: old sessions and any open details are gone.
		m.sessions = nil
		m.sessionsErr = nil
		m.sessionsCursor = 0
		m.detail = nil
		m.detailMissing = false
		m.detailPoll.Stop()
		m.log.Info(nil, "user selected", zap.String("user.email", email))
		return m, fetchSessions(m.client, m.machine.SessionsGen(), email)

	case focusSessions:
		if m.sessionsCursor >= len(m.sessions) {
			return m, nil
		}
		id := m.sessions[m.sessionsCursor].ID
		ok, changed := m.machine.SelectSession(id)
		if !ok {
			return m, nil
		}
		m.focus = focusDetails
		if !changed {
			return m, nil
		}
		m.detail = nil
		m.detailErr = nil
		m.detailMissing = false
		m.detailTabs.Activate(tabSummary)
		gen := m.detailPoll.Start()
		m.log.Info(nil, "session opened", zap.String("session.id", id))
		return m, fetchDetail(m.client, gen, m.machine.DetailGen(), id, m.machine.SelectedUser())
	}
	return m, nil
}

// closeTopPane closes the innermost open pane, cascading details
// before sessions.
func (m Model) closeTopPane() (tea.Model, tea.Cmd) {
	if m.machine.DetailsOpen() {
		m.machine.CloseDetails()
		m.detailPoll.Stop()
		m.detail = nil
		m.detailMissing = false
		if m.focus == focusDetails {
			m.focus = focusSessions
		}
		return m, nil
	}
	if m.machine.SessionsOpen() {
		m.machine.CloseSessions()
		m.detailPoll.Stop()
		m.sessions = nil
		m.sessionsCursor = 0
		m.focus = focusUsers
		return m, nil
	}
	return m, nil
}

// requestDelete arms the confirmation for the session under the
// cursor, or for every session of the selected user.
func (m Model) requestDelete(all bool) (tea.Model, tea.Cmd) {
	email := m.machine.SelectedUser()
	if email == "" {
		return m, nil
	}
	if all {
		if m.inflight["all:"+email] {
			return m, nil
		}
		m.confirm = confirmState{pending: true, all: true, email: email}
		return m, nil
	}
	if m.focus != focusSessions || m.sessionsCursor >= len(m.sessions) {
		return m, nil
	}
	id := m.sessions[m.sessionsCursor].ID
	if m.inflight[id] {
		return m, nil
	}
	m.confirm = confirmState{pending: true, id: id, email: email}
	return m, nil
}

func (m Model) executeConfirmed() (tea.Model, tea.Cmd) {
	c := m.confirm
	m.confirm = confirmState{}

	if c.all {
		m.inflight["all:"+c.email] = true
		// Optimistic: the pane empties immediately, the reload after
		// the response settles the truth.
		if c.email == m.machine.SelectedUser() {
			m.sessions = nil
			m.sessionsCursor = 0
			if m.machine.DetailsOpen() {
				m.machine.CloseDetails()
				m.detailPoll.Stop()
				m.detail = nil
				m.focus = focusSessions
			}
		}
		m.log.Info(nil, "deleting all sessions", zap.String("user.email", c.email))
		return m, deleteAllSessions(m.client, c.email)
	}

	m.inflight[c.id] = true
	if c.email == m.machine.SelectedUser() {
		m.sessions = removeSession(m.sessions, c.id)
		if m.sessionsCursor >= len(m.sessions) {
			m.sessionsCursor = max(0, len(m.sessions)-1)
		}
		if m.machine.SelectedSession() == c.id {
			m.machine.CloseDetails()
			m.detailPoll.Stop()
			m.detail = nil
			if m.focus == focusDetails {
				m.focus = focusSessions
			}
		}
	}
	m.log.Info(nil, "deleting session", zap.String("session.id", c.id))
	return m, deleteSession(m.client, c.id, c.email)
}

func (m Model) beginPromptEdit() (tea.Model, tea.Cmd) {
	si := m.activeStageIndex()
	if si < 0 || m.promptCursor >= len(m.prompts[si].Prompts) {
		return m, nil
	}
	m.edit = editState{active: true, stageIdx: si, promptIdx: m.promptCursor}
	m.editor.SetValue(m.prompts[si].Prompts[m.promptCursor].Question)
	m.editor.Focus()
	return m, textarea.Blink
}

func (m Model) beginCoachEdit() (tea.Model, tea.Cmd) {
	if m.coachCursor >= len(m.coaches) {
		return m, nil
	}
	m.edit = editState{active: true, coach: true, coachIdx: m.coachCursor}
	m.editor.SetValue(m.coaches[m.coachCursor].Prompt)
	m.editor.Focus()
	return m, textarea.Blink
}

func (m Model) saveEdit() (tea.Model, tea.Cmd) {
	e := m.edit
	m.edit = editState{}
	m.editor.Blur()

	if e.coach {
		if e.coachIdx >= len(m.coaches) {
			return m, nil
		}
		coach := m.coaches[e.coachIdx]
		coach.Prompt = m.editor.Value()
		m.coaches[e.coachIdx] = coach
		return m, saveCoach(m.client, coach)
	}

	if e.stageIdx >= len(m.prompts) || e.promptIdx >= len(m.prompts[e.stageIdx].Prompts) {
		return m, nil
	}
	stage := m.prompts[e.stageIdx]
	stage.Prompts[e.promptIdx].Question = m.editor.Value()
	m.prompts[e.stageIdx] = stage
	return m, savePromptStage(m.client, stage)
}

// --- small helpers -------------------------------------------------

// flashCmd schedules the expiry for the flashes set just before the
// call, superseding any earlier pending expiry.
func (m *Model) flashCmd() tea.Cmd {
	m.flashSeq++
	return tick(flashDuration, flashExpireMsg{seq: m.flashSeq})
}

func (m *Model) showToast(text string, isErr bool) tea.Cmd {
	m.toast = text
	m.toastErr = isErr
	m.toastSeq++
	return tick(toastDuration, toastExpireMsg{seq: m.toastSeq})
}

func (m Model) persistStage() {
	if key := m.stageTabs.Active(); key != "" {
		if err := m.uistate.Set(state.KeyPromptStage, key); err != nil {
			m.log.Warn(nil, "ui state write failed", zap.Error(err))
		}
	}
}

func (m Model) hasUser(email string) bool {
	for _, u := range m.users {
		if u.Email == email {
			return true
		}
	}
	return false
}

func (m Model) hasSession(id string) bool {
	for _, s := range m.sessions {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (m Model) activeStageIndex() int {
	key := m.stageTabs.Active()
	for i, s := range m.prompts {
		if s.ID == key {
			return i
		}
	}
	return -1
}

func (m Model) activeStagePrompts() int {
	if i := m.activeStageIndex(); i >= 0 {
		return len(m.prompts[i].Prompts)
	}
	return 0
}

func removeSession(sessions []api.Session, id string) []api.Session {
	out := make([]api.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

func appendToHistory(history []float64, value float64) []float64 {
	history = append(history, value)
	if len(history) > historySize {
		history = history[1:]
	}
	return history
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
