package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nnamon/hippo/internal/hydration"
)

func newTestRegistry(t *testing.T) (*Registry, *fakeRepo) {
	t.Helper()
	now := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo(func() time.Time { return now })
	dispatch := &fakeDispatcher{}
	sched := New(repo, dispatch, hydration.NewEstimator(repo), zap.NewNop(), time.UTC)
	return NewRegistry(sched, repo, zap.NewNop(), time.Minute), repo
}

func registeredCount(g *Registry) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.timers)
}

func TestRegistry_StartIsReschedule(t *testing.T) {
	g, _ := newTestRegistry(t)
	defer g.StopAll()

	g.Start(1)
	assert.Equal(t, 1, registeredCount(g))

	// Starting again replaces the timer instead of stacking a second one.
	g.Start(1)
	assert.Equal(t, 1, registeredCount(g))

	g.Start(2)
	assert.Equal(t, 2, registeredCount(g))
}

func TestRegistry_CancelIsIdempotent(t *testing.T) {
	g, _ := newTestRegistry(t)
	defer g.StopAll()

	g.Start(1)
	g.Cancel(1)
	assert.Equal(t, 0, registeredCount(g))

	// Cancelling an absent user is a no-op.
	g.Cancel(1)
	g.Cancel(99)
	assert.Equal(t, 0, registeredCount(g))
}

func TestRegistry_StartAllLoadsActiveUsers(t *testing.T) {
	g, repo := newTestRegistry(t)
	defer g.StopAll()

	ctx := context.Background()
	for id := int64(1); id <= 3; id++ {
		p := testProfile(id, time.Now().UTC())
		p.Active = id != 2 // user 2 is paused
		require.NoError(t, repo.UpsertProfile(ctx, p))
	}

	require.NoError(t, g.StartAll(ctx))
	assert.Equal(t, 2, registeredCount(g), "only active users get timers")
}

func TestRegistry_StopAllDrains(t *testing.T) {
	g, _ := newTestRegistry(t)

	g.Start(1)
	g.Start(2)
	g.Start(3)

	done := make(chan struct{})
	go func() {
		g.StopAll()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("StopAll did not drain timers")
	}
	assert.Equal(t, 0, registeredCount(g))

	// The registry stays usable after a full stop.
	g.Start(1)
	assert.Equal(t, 1, registeredCount(g))
	g.StopAll()
}
