package poll

import (
	"reflect"

	"github.com/nikitagorelovwlnx/wlnx-control-panel/internal/api"
)

// UsersChanged compares two user lists the way the list poll needs:
// shallow, by email, session count and session timestamps. Order
// matters; a reordered list re-renders.
func UsersChanged(prev, next []api.User) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range next {
		if prev[i].Email != next[i].Email ||
			prev[i].SessionCount != next[i].SessionCount ||
			!prev[i].LastSession.Equal(next[i].LastSession) ||
			!prev[i].FirstSession.Equal(next[i].FirstSession) {
			return true
		}
	}
	return false
}

// SessionsChanged compares two session lists by id and update
// timestamp.
func SessionsChanged(prev, next []api.Session) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range next {
		if prev[i].ID != next[i].ID || !prev[i].UpdatedAt.Equal(next[i].UpdatedAt) {
			return true
		}
	}
	return false
}

// SessionDiff reports which detail fields changed between two fetches
// of the same session. The detail poll re-renders only the panes whose
// field moved.
type SessionDiff struct {
	Summary    bool
	Transcript bool
	Wellness   bool
}

// Any reports whether at least one field changed.
func (d SessionDiff) Any() bool {
	return d.Summary || d.Transcript || d.Wellness
}

// DiffSession compares the detail fields of two snapshots of one
// session.
func DiffSession(prev, next api.Session) SessionDiff {
	return SessionDiff{
		Summary:    prev.Summary != next.Summary,
		Transcript: prev.Transcription != next.Transcription,
		Wellness:   !reflect.DeepEqual(prev.Wellness, next.Wellness),
	}
}
