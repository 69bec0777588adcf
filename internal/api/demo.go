package api

import "time"

// DemoUsers is the fixed dataset served when the users endpoint is
// unreachable, so the panel stays populated in a disconnected or dev
// environment. Callers must flag demo data in logs; it is never mixed
// with live data silently.
func DemoUsers() []User {
	return []User{
		{
			Email:        "alice@example.com",
			SessionCount: 3,
			FirstSession: time.Date(2025, 1, 13, 11, 10, 0, 0, time.UTC),
			LastSession:  time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			Email:        "bob@example.com",
			SessionCount: 2,
			FirstSession: time.Date(2025, 1, 12, 13, 45, 0, 0, time.UTC),
			LastSession:  time.Date(2025, 1, 14, 14, 15, 0, 0, time.UTC),
		},
		{
			Email:        "charlie@example.com",
			SessionCount: 1,
			FirstSession: time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC),
			LastSession:  time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC),
		},
	}
}
