package analytics

import (
	"testing"
	"time"
)

// at parses "2006-01-02 15:04" in UTC.
func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", s, err)
	}
	return ts
}

func rec(t *testing.T, sender, text, ts string) MessageRecord {
	t.Helper()
	return NewRecord(sender, text, at(t, ts))
}

func mustLog(t *testing.T, records ...MessageRecord) *MessageLog {
	t.Helper()
	log, err := NewMessageLog(records)
	if err != nil {
		t.Fatalf("NewMessageLog: %v", err)
	}
	return log
}

// scenarioLog is the three-message Alice/Bob transcript used across tests.
// 2024-01-01 is a Monday.
func scenarioLog(t *testing.T) *MessageLog {
	t.Helper()
	return mustLog(t,
		rec(t, "Alice", "hi there", "2024-01-01 10:00"),
		rec(t, "Bob", "<Media omitted>", "2024-01-01 10:05"),
		rec(t, "Alice", "check http://x.co 😀", "2024-01-02 09:00"),
	)
}

// groupLog spans two years, several months and includes a notification.
func groupLog(t *testing.T) *MessageLog {
	t.Helper()
	return mustLog(t,
		rec(t, "group_notification", "Alice created group \"Trip\"", "2023-12-30 08:00"),
		rec(t, "Alice", "Who is in for the trip? 🎉", "2023-12-30 08:01"),
		rec(t, "Bob", "me! 🎉🎉", "2023-12-30 08:15"),
		rec(t, "Carol", "count me in", "2024-01-05 21:30"),
		rec(t, "Alice", "booking at example.com and https://go.dev/doc", "2024-01-05 22:10"),
		rec(t, "Dave", "<Media omitted>", "2024-02-14 12:00"),
		rec(t, "Eve", "trip trip trip", "2024-04-01 07:45"),
		rec(t, "Frank", "late to the party 👍", "2024-04-02 23:59"),
		rec(t, "Alice", "see you all", "2024-04-03 00:00"),
	)
}
