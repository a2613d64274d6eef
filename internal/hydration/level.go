// Package hydration derives a user's rolling hydration level from recent
// reminder outcomes.
package hydration

import (
	"context"

	"github.com/nnamon/hippo/internal/domain"
)

// WindowSize is how many recent outcomes feed the level calculation.
const WindowSize = 6

// DefaultLevel is returned when a user has no outcome history at all.
const DefaultLevel = 2

// MaxLevel is the top of the discrete scale.
const MaxLevel = 5

// PadOutcomes right-pads kinds (newest first) with synthetic alternating
// missed/confirmed entries, starting with missed, until it reaches size.
// A sparse history is thereby biased toward the lower middle of the scale
// instead of rewarding silence. Input longer than size is truncated.
func PadOutcomes(kinds []domain.OutcomeKind, size int) []domain.OutcomeKind {
	if len(kinds) >= size {
		return kinds[:size]
	}
	padded := make([]domain.OutcomeKind, 0, size)
	padded = append(padded, kinds...)
	for i := 0; len(padded) < size; i++ {
		if i%2 == 0 {
			padded = append(padded, domain.OutcomeMissed)
		} else {
			padded = append(padded, domain.OutcomeConfirmed)
		}
	}
	return padded
}

// LevelFor maps a full-size outcome window to a discrete level 0–5 by the
// confirmed ratio. Thresholds are inclusive lower bounds.
func LevelFor(kinds []domain.OutcomeKind) int {
	confirmed := 0
	for _, k := range kinds {
		if k == domain.OutcomeConfirmed {
			confirmed++
		}
	}
	ratio := float64(confirmed) / float64(len(kinds))

	switch {
	case ratio >= 0.85:
		return 5
	case ratio >= 0.65:
		return 4
	case ratio >= 0.50:
		return 3
	case ratio >= 0.35:
		return 2
	case ratio >= 0.15:
		return 1
	default:
		return 0
	}
}

// outcomeSource is the slice of the store the estimator needs.
type outcomeSource interface {
	RecentOutcomes(ctx context.Context, userID int64, limit int) ([]domain.OutcomeKind, error)
}

// Estimator computes levels from stored history. It recomputes on every
// call; the backing query is small and bounded, so there is no cache.
type Estimator struct {
	src outcomeSource
}

func NewEstimator(src outcomeSource) *Estimator {
	return &Estimator{src: src}
}

// Level returns the user's current hydration level in [0,5].
func (e *Estimator) Level(ctx context.Context, userID int64) (int, error) {
	kinds, err := e.src.RecentOutcomes(ctx, userID, WindowSize)
	if err != nil {
		return 0, err
	}
	if len(kinds) == 0 {
		return DefaultLevel, nil
	}
	return LevelFor(PadOutcomes(kinds, WindowSize)), nil
}
