// Package panel owns the cascading pane navigation state: which of the
// Users, Sessions and Details panes are open and which rows are
// selected. It has no terminal or HTTP dependency; callers apply its
// decisions to the screen and to the pollers.
package panel

// State identifies which panes are open. Panes cascade: sessions
// cannot be open without a selected user, details cannot be open
// without a selected session.
type State int

const (
	Closed State = iota
	UsersOnly
	UsersAndSessions
	UsersSessionsAndDetails
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case UsersOnly:
		return "users"
	case UsersAndSessions:
		return "users+sessions"
	case UsersSessionsAndDetails:
		return "users+sessions+details"
	default:
		return "unknown"
	}
}

// Machine tracks pane state and selection. At most one user and one
// session are selected at a time; every scope change bumps a
// generation counter so in-flight fetches for a stale scope can be
// recognized and discarded by the caller.
type Machine struct {
	state           State
	selectedUser    string
	selectedSession string
	sessionsGen     uint64
	detailGen       uint64
}

// New returns a machine with no panes open.
func New() *Machine {
	return &Machine{state: Closed}
}

// UsersLoaded marks the users pane populated. Only meaningful from
// Closed; otherwise a no-op.
func (m *Machine) UsersLoaded() {
	if m.state == Closed {
		m.state = UsersOnly
	}
}

// SelectUser opens (or refreshes) the sessions pane scoped to email.
// Selection is exclusive: the previous user's selection is dropped.
// When details are open for another user's session they are closed
// first. Re-selecting the already-selected user is idempotent and
// reports changed=false so the caller skips the duplicate fetch.
func (m *Machine) SelectUser(email string) (changed bool) {
	if m.state == Closed {
		m.state = UsersOnly
	}
	if m.selectedUser == email && m.state >= UsersAndSessions {
		return false
	}

	if m.state == UsersSessionsAndDetails {
		m.closeDetailsLocked()
	}

	m.selectedUser = email
	m.state = UsersAndSessions
	m.sessionsGen++
	return true
}

// SelectSession opens (or refreshes) the details pane for id. It
// requires the sessions pane to be open. Re-selecting the open session
// is idempotent and reports changed=false.
func (m *Machine) SelectSession(id string) (ok, changed bool) {
	if m.state < UsersAndSessions {
		return false, false
	}
	if m.selectedSession == id && m.state == UsersSessionsAndDetails {
		return true, false
	}

	m.selectedSession = id
	m.state = UsersSessionsAndDetails
	m.detailGen++
	return true, true
}

// CloseSessions closes the sessions pane, cascading to the details
// pane. Both selections are cleared and both scopes invalidated.
func (m *Machine) CloseSessions() {
	if m.state < UsersAndSessions {
		return
	}
	m.closeDetailsLocked()
	m.selectedUser = ""
	m.state = UsersOnly
	m.sessionsGen++
}

// CloseDetails closes the details pane; the sessions pane stays open.
func (m *Machine) CloseDetails() {
	if m.state != UsersSessionsAndDetails {
		return
	}
	m.closeDetailsLocked()
}

func (m *Machine) closeDetailsLocked() {
	m.selectedSession = ""
	if m.state == UsersSessionsAndDetails {
		m.state = UsersAndSessions
	}
	m.detailGen++
}

// State returns the current pane state.
func (m *Machine) State() State { return m.state }

// SelectedUser returns the selected user email, or "".
func (m *Machine) SelectedUser() string { return m.selectedUser }

// SelectedSession returns the selected session id, or "".
func (m *Machine) SelectedSession() string { return m.selectedSession }

// SessionsOpen reports whether the sessions pane is open.
func (m *Machine) SessionsOpen() bool { return m.state >= UsersAndSessions }

// DetailsOpen reports whether the details pane is open.
func (m *Machine) DetailsOpen() bool { return m.state == UsersSessionsAndDetails }

// SessionsGen returns the current sessions scope generation. A fetch
// started under an older generation targets a scope the operator has
// already navigated away from.
func (m *Machine) SessionsGen() uint64 { return m.sessionsGen }

// DetailGen returns the current details scope generation.
func (m *Machine) DetailGen() uint64 { return m.detailGen }

// SessionsCurrent reports whether a result fetched under gen still
// applies to the open sessions pane.
func (m *Machine) SessionsCurrent(gen uint64) bool {
	return m.SessionsOpen() && gen == m.sessionsGen
}

// DetailCurrent reports whether a result fetched under gen still
// applies to the open details pane.
func (m *Machine) DetailCurrent(gen uint64) bool {
	return m.DetailsOpen() && gen == m.detailGen
}
