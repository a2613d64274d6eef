package domain

import "time"

// OutcomeKind classifies what happened to a dispatched reminder.
type OutcomeKind string

const (
	OutcomeConfirmed OutcomeKind = "confirmed"
	OutcomeMissed    OutcomeKind = "missed"
)

// Defaults applied when a profile is first created.
const (
	DefaultWakingStartHour = 7
	DefaultWakingEndHour   = 22
	DefaultIntervalMinutes = 60
	DefaultTimezone        = "Asia/Singapore"
)

// UserProfile holds per-user reminder settings. Waking hours are wall-clock
// times in the user's own timezone.
type UserProfile struct {
	UserID            int64
	Username          string
	FirstName         string
	WakingStartHour   int
	WakingStartMinute int
	WakingEndHour     int
	WakingEndMinute   int
	IntervalMinutes   int
	Timezone          string
	Active            bool
	CreatedAt         time.Time // UTC
}

// AlwaysActive reports whether the profile carries the 24/7 sentinel
// window (00:00–23:00), which bypasses timezone math entirely.
func (p *UserProfile) AlwaysActive() bool {
	return p.WakingStartHour == 0 && p.WakingStartMinute == 0 &&
		p.WakingEndHour == 23 && p.WakingEndMinute == 0
}

// Interval returns the reminder interval as a duration.
func (p *UserProfile) Interval() time.Duration {
	return time.Duration(p.IntervalMinutes) * time.Minute
}

// DispatchHandle locates a delivered reminder message so the transport can
// edit it later. Opaque to everything except the dispatch adapter.
type DispatchHandle struct {
	ChatID    int64
	MessageID int
}

// ActiveReminder is an outstanding reminder awaiting confirmation.
// It is deleted once confirmed, or converted into a missed OutcomeRecord
// by the expire sweep.
type ActiveReminder struct {
	UserID     int64
	ReminderID string
	Handle     DispatchHandle
	CreatedAt  time.Time // UTC
	ExpiresAt  time.Time // UTC, CreatedAt + fixed TTL
}

// OutcomeRecord is an append-only log entry: one confirmed or missed
// reminder. All rolling statistics derive from these rows.
type OutcomeRecord struct {
	ID         int64
	UserID     int64
	Kind       OutcomeKind
	ReminderID string
	CreatedAt  time.Time // UTC
}
