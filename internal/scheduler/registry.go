package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nnamon/hippo/internal/store"
)

// Registry timing defaults. The check period matches the original design:
// each user is re-evaluated every minute and the evaluation itself decides
// whether anything is due.
const (
	DefaultCheckPeriod = time.Minute
	firstTickDelay     = 10 * time.Second
	tickTimeout        = 30 * time.Second
)

// Registry owns one recurring timer goroutine per active user. Its map is
// in-process state only: it is rebuilt from the store on startup, so the
// durable active flag stays the source of truth.
type Registry struct {
	sched  *Scheduler
	repo   store.Repo
	log    *zap.Logger
	period time.Duration

	mu     sync.Mutex
	timers map[int64]context.CancelFunc
	wg     sync.WaitGroup
}

func NewRegistry(sched *Scheduler, repo store.Repo, log *zap.Logger, period time.Duration) *Registry {
	if period <= 0 {
		period = DefaultCheckPeriod
	}
	return &Registry{
		sched:  sched,
		repo:   repo,
		log:    log,
		period: period,
		timers: make(map[int64]context.CancelFunc),
	}
}

// Start installs the recurring timer for a user, replacing any existing one
// (reschedule semantics, used after a preference change).
func (g *Registry) Start(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.startLocked(userID)
}

func (g *Registry) startLocked(userID int64) {
	if cancel, ok := g.timers[userID]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	g.timers[userID] = cancel

	g.wg.Add(1)
	go g.runUser(ctx, userID)

	g.log.Info("reminder timer started", zap.Int64("userID", userID))
}

// Cancel stops and removes a user's timer. No-op if absent. An in-flight
// evaluation finishes on its own detached context rather than being cut
// off mid-write.
func (g *Registry) Cancel(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	cancel, ok := g.timers[userID]
	if !ok {
		return
	}
	cancel()
	delete(g.timers, userID)
	g.log.Info("reminder timer cancelled", zap.Int64("userID", userID))
}

// StartAll loads every active user from the store and starts a timer for
// each. Called once at process startup.
func (g *Registry) StartAll(ctx context.Context) error {
	ids, err := g.repo.ListActiveUserIDs(ctx)
	if err != nil {
		return err
	}

	g.mu.Lock()
	for _, id := range ids {
		g.startLocked(id)
	}
	g.mu.Unlock()

	g.log.Info("reminder timers started", zap.Int("users", len(ids)))
	return nil
}

// StopAll cancels every timer and waits for in-flight evaluations to
// finish. Called on graceful shutdown.
func (g *Registry) StopAll() {
	g.mu.Lock()
	for id, cancel := range g.timers {
		cancel()
		delete(g.timers, id)
	}
	g.mu.Unlock()

	g.wg.Wait()
	g.log.Info("all reminder timers stopped")
}

// runUser is the per-user timer loop: one early tick shortly after start,
// then one per check period until cancelled.
func (g *Registry) runUser(ctx context.Context, userID int64) {
	defer g.wg.Done()

	select {
	case <-ctx.Done():
		return
	case <-time.After(firstTickDelay):
	}
	g.tick(userID)

	ticker := time.NewTicker(g.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.tick(userID)
		}
	}
}

// tick runs one evaluation on a detached, bounded context so that
// cancelling the timer never aborts a write in progress, and a stuck
// store call cannot hold the goroutine forever. Failures are contained
// here: one user's broken tick must not disturb the others.
func (g *Registry) tick(userID int64) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("tick panicked",
				zap.Int64("userID", userID),
				zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	if err := g.sched.Evaluate(ctx, userID); err != nil {
		g.log.Error("evaluate failed", zap.Int64("userID", userID), zap.Error(err))
	}
}
