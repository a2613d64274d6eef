package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnamon/hippo/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "hippo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleProfile(userID int64) *domain.UserProfile {
	return &domain.UserProfile{
		UserID:          userID,
		Username:        "hippofan",
		FirstName:       "Mo",
		WakingStartHour: 7,
		WakingEndHour:   22,
		IntervalMinutes: 60,
		Timezone:        "Asia/Singapore",
		Active:          true,
		CreatedAt:       time.Unix(time.Now().Unix(), 0).UTC(),
	}
}

func TestProfileRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetProfile(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	p := sampleProfile(1)
	require.NoError(t, repo.UpsertProfile(ctx, p))

	got, err := repo.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	// Field updates are visible on re-read.
	require.NoError(t, repo.UpdateInterval(ctx, 1, 90))
	require.NoError(t, repo.UpdateTimezone(ctx, 1, "Europe/London"))
	require.NoError(t, repo.UpdateWakingWindow(ctx, 1,
		domain.Clock{Hour: 9}, domain.Clock{Hour: 21, Minute: 30}))

	got, err = repo.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 90, got.IntervalMinutes)
	assert.Equal(t, "Europe/London", got.Timezone)
	assert.Equal(t, 9, got.WakingStartHour)
	assert.Equal(t, 21, got.WakingEndHour)
	assert.Equal(t, 30, got.WakingEndMinute)
}

func TestListActiveUserIDs(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		p := sampleProfile(id)
		require.NoError(t, repo.UpsertProfile(ctx, p))
	}
	require.NoError(t, repo.SetActive(ctx, 2, false))

	ids, err := repo.ListActiveUserIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 3}, ids)
}

func TestReminderLifecycle(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertProfile(ctx, sampleProfile(1)))

	now := time.Unix(time.Now().Unix(), 0).UTC()
	rem := &domain.ActiveReminder{
		UserID:     1,
		ReminderID: "r-1",
		Handle:     domain.DispatchHandle{ChatID: 1, MessageID: 77},
		CreatedAt:  now,
		ExpiresAt:  now.Add(30 * time.Minute),
	}
	require.NoError(t, repo.CreateOutstandingReminder(ctx, rem))

	got, err := repo.GetOutstandingReminder(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, rem, got)

	list, err := repo.GetOutstandingReminders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, *rem, list[0])

	require.NoError(t, repo.DeleteOutstandingReminder(ctx, "r-1"))
	_, err = repo.GetOutstandingReminder(ctx, "r-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOutcomesAndActivity(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertProfile(ctx, sampleProfile(1)))

	last, err := repo.MostRecentActivity(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, last, "no activity yet")

	require.NoError(t, repo.AppendOutcome(ctx, 1, domain.OutcomeMissed, "r-1"))
	require.NoError(t, repo.AppendOutcome(ctx, 1, domain.OutcomeConfirmed, "r-2"))
	require.NoError(t, repo.AppendOutcome(ctx, 1, domain.OutcomeConfirmed, "r-3"))

	kinds, err := repo.RecentOutcomes(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.OutcomeKind{domain.OutcomeConfirmed, domain.OutcomeConfirmed}, kinds,
		"newest first, bounded by limit")

	kinds, err = repo.RecentOutcomes(ctx, 1, 6)
	require.NoError(t, err)
	require.Len(t, kinds, 3)
	assert.Equal(t, domain.OutcomeMissed, kinds[2], "oldest outcome comes last")

	last, err = repo.MostRecentActivity(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, last)

	// A newer outstanding reminder moves the activity watermark forward.
	future := time.Unix(time.Now().Add(10*time.Minute).Unix(), 0).UTC()
	require.NoError(t, repo.CreateOutstandingReminder(ctx, &domain.ActiveReminder{
		UserID:     1,
		ReminderID: "r-4",
		Handle:     domain.DispatchHandle{ChatID: 1, MessageID: 5},
		CreatedAt:  future,
		ExpiresAt:  future.Add(30 * time.Minute),
	}))
	last, err = repo.MostRecentActivity(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, future, *last)

	confirmed, missed, err := repo.DailyStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, confirmed)
	assert.Equal(t, 1, missed)
}

func TestDailyStatsIsolatedPerUser(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertProfile(ctx, sampleProfile(1)))
	require.NoError(t, repo.UpsertProfile(ctx, sampleProfile(2)))

	require.NoError(t, repo.AppendOutcome(ctx, 1, domain.OutcomeConfirmed, "a"))
	require.NoError(t, repo.AppendOutcome(ctx, 2, domain.OutcomeMissed, "b"))

	confirmed, missed, err := repo.DailyStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, confirmed)
	assert.Equal(t, 0, missed)
}

func TestDeleteUserCascades(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertProfile(ctx, sampleProfile(1)))

	now := time.Unix(time.Now().Unix(), 0).UTC()
	require.NoError(t, repo.AppendOutcome(ctx, 1, domain.OutcomeConfirmed, "r-1"))
	require.NoError(t, repo.CreateOutstandingReminder(ctx, &domain.ActiveReminder{
		UserID:     1,
		ReminderID: "r-2",
		Handle:     domain.DispatchHandle{ChatID: 1, MessageID: 9},
		CreatedAt:  now,
		ExpiresAt:  now.Add(30 * time.Minute),
	}))

	require.NoError(t, repo.DeleteUser(ctx, 1))

	_, err := repo.GetProfile(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	kinds, err := repo.RecentOutcomes(ctx, 1, 6)
	require.NoError(t, err)
	assert.Empty(t, kinds)
	rems, err := repo.GetOutstandingReminders(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, rems)
}
