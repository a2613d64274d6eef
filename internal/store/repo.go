package store

import (
	"context"
	"errors"
	"time"

	"github.com/nnamon/hippo/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Repo defines the durable operations for profiles, outstanding reminders
// and the outcome log. Implementations serialize per-row writes but need
// not serialize across users.
type Repo interface {
	// Profiles.
	GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error)
	UpsertProfile(ctx context.Context, p *domain.UserProfile) error
	SetActive(ctx context.Context, userID int64, active bool) error
	UpdateWakingWindow(ctx context.Context, userID int64, start, end domain.Clock) error
	UpdateInterval(ctx context.Context, userID int64, minutes int) error
	UpdateTimezone(ctx context.Context, userID int64, tz string) error
	// DeleteUser erases the profile together with all outcome history and
	// outstanding reminders (user-initiated reset).
	DeleteUser(ctx context.Context, userID int64) error
	ListActiveUserIDs(ctx context.Context) ([]int64, error)

	// Outstanding reminders.
	CreateOutstandingReminder(ctx context.Context, r *domain.ActiveReminder) error
	GetOutstandingReminders(ctx context.Context, userID int64) ([]domain.ActiveReminder, error)
	GetOutstandingReminder(ctx context.Context, reminderID string) (*domain.ActiveReminder, error)
	DeleteOutstandingReminder(ctx context.Context, reminderID string) error

	// Outcome log (append-only).
	AppendOutcome(ctx context.Context, userID int64, kind domain.OutcomeKind, reminderID string) error
	// RecentOutcomes returns up to limit outcome kinds, newest first.
	RecentOutcomes(ctx context.Context, userID int64, limit int) ([]domain.OutcomeKind, error)
	// MostRecentActivity returns the newest timestamp across outstanding
	// reminder creation and outcome records, or nil if the user has neither.
	MostRecentActivity(ctx context.Context, userID int64) (*time.Time, error)
	// DailyStats counts confirmed and missed outcomes recorded in the last
	// 24 hours.
	DailyStats(ctx context.Context, userID int64) (confirmed, missed int, err error)

	Close() error
}
