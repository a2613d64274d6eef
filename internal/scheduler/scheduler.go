// Package scheduler decides, per user, whether a hydration reminder is due,
// dispatches it, and expires unacknowledged reminders along the way.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nnamon/hippo/internal/domain"
	"github.com/nnamon/hippo/internal/store"
)

// Reminder carries the content of one dispatched reminder. Rendering (text,
// buttons) is the transport's business.
type Reminder struct {
	ReminderID     string
	Level          int
	ConfirmedToday int
	MissedToday    int
}

// Dispatcher delivers reminders and annotates stale ones. The Telegram
// router implements this.
type Dispatcher interface {
	Send(ctx context.Context, userID int64, r Reminder) (domain.DispatchHandle, error)
	// MarkExpired is best-effort: the caller logs failures and moves on.
	MarkExpired(ctx context.Context, h domain.DispatchHandle) error
}

// levelSource is the slice of the hydration estimator the scheduler needs.
type levelSource interface {
	Level(ctx context.Context, userID int64) (int, error)
}

// ReminderTTL is how long a dispatched reminder stays confirmable. It is
// independent of the user's reminder interval.
const ReminderTTL = 30 * time.Minute

// Scheduler evaluates one user at a time. Evaluations for different users
// may run concurrently; each touches only rows scoped to its own user id.
type Scheduler struct {
	repo     store.Repo
	dispatch Dispatcher
	levels   levelSource
	log      *zap.Logger
	fallback *time.Location
	ttl      time.Duration

	now func() time.Time // stubbed in tests
}

func New(repo store.Repo, dispatch Dispatcher, levels levelSource, log *zap.Logger, fallback *time.Location) *Scheduler {
	if fallback == nil {
		fallback = time.UTC
	}
	return &Scheduler{
		repo:     repo,
		dispatch: dispatch,
		levels:   levels,
		log:      log,
		fallback: fallback,
		ttl:      ReminderTTL,
		now:      time.Now,
	}
}

// Evaluate runs one tick for a user: active check, waking-window check,
// interval check, expire sweep, dispatch. Any step may short-circuit with
// no dispatch. The returned error is for the tick runner to log; a failed
// tick is retried from scratch on the next one.
func (s *Scheduler) Evaluate(ctx context.Context, userID int64) error {
	p, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get profile: %w", err)
	}
	if !p.Active {
		return nil
	}

	now := s.now().UTC()
	loc, substituted := domain.ResolveLocation(p.Timezone, s.fallback)
	if substituted && !p.AlwaysActive() {
		s.log.Warn("invalid timezone, using fallback",
			zap.Int64("userID", userID),
			zap.String("tz", p.Timezone),
			zap.String("fallback", s.fallback.String()))
	}
	if !domain.IsWithinWindow(p, now, loc) {
		return nil
	}

	// "Last time something happened" spans both outstanding-reminder
	// creation and recorded outcomes. No history means first-ever reminder.
	last, err := s.repo.MostRecentActivity(ctx, userID)
	if err != nil {
		return fmt.Errorf("most recent activity: %w", err)
	}
	if last != nil && now.Sub(*last) < p.Interval() {
		return nil
	}

	// The sweep commits before the new reminder is inserted, so the missed
	// outcomes it records can never reference the replacement.
	if err := s.expireSweep(ctx, userID); err != nil {
		return fmt.Errorf("expire sweep: %w", err)
	}

	// Level is computed post-sweep so freshly recorded misses count.
	level, err := s.levels.Level(ctx, userID)
	if err != nil {
		return fmt.Errorf("hydration level: %w", err)
	}
	confirmed, missed, err := s.repo.DailyStats(ctx, userID)
	if err != nil {
		return fmt.Errorf("daily stats: %w", err)
	}

	reminderID := uuid.NewString()
	handle, err := s.dispatch.Send(ctx, userID, Reminder{
		ReminderID:     reminderID,
		Level:          level,
		ConfirmedToday: confirmed,
		MissedToday:    missed,
	})
	if err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}

	rem := &domain.ActiveReminder{
		UserID:     userID,
		ReminderID: reminderID,
		Handle:     handle,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}
	if err := s.repo.CreateOutstandingReminder(ctx, rem); err != nil {
		return fmt.Errorf("create outstanding reminder: %w", err)
	}

	s.log.Info("reminder dispatched",
		zap.Int64("userID", userID),
		zap.String("reminderID", reminderID),
		zap.Int("level", level))
	return nil
}

// expireSweep converts every outstanding reminder for the user into a
// missed outcome and deletes the row. After it returns successfully the
// user has zero outstanding reminders, so the following dispatch restores
// the at-most-one invariant.
func (s *Scheduler) expireSweep(ctx context.Context, userID int64) error {
	rems, err := s.repo.GetOutstandingReminders(ctx, userID)
	if err != nil {
		return fmt.Errorf("list outstanding: %w", err)
	}
	for i := range rems {
		rem := &rems[i]
		if err := s.repo.AppendOutcome(ctx, userID, domain.OutcomeMissed, rem.ReminderID); err != nil {
			return fmt.Errorf("record missed outcome: %w", err)
		}
		if err := s.dispatch.MarkExpired(ctx, rem.Handle); err != nil {
			// Annotation is cosmetic; the missed record already exists.
			s.log.Warn("mark expired failed",
				zap.Int64("userID", userID),
				zap.String("reminderID", rem.ReminderID),
				zap.Error(err))
		}
		if err := s.repo.DeleteOutstandingReminder(ctx, rem.ReminderID); err != nil {
			return fmt.Errorf("delete outstanding: %w", err)
		}
		s.log.Info("reminder expired",
			zap.Int64("userID", userID),
			zap.String("reminderID", rem.ReminderID))
	}
	return nil
}
