package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const DefaultWindowHours = 48

// ItemStore is the subset of the item repository the sweeper needs.
type ItemStore interface {
	SweepStale(ctx context.Context, cutoff time.Time) (expired, lowScore int, err error)
}

// Result reports how many items matched each removal predicate. An item
// matching both predicates is counted in both, so the counts may overlap.
type Result struct {
	Expired  int `json:"expired"`
	LowScore int `json:"low_score"`
}

// Sweeper removes items that aged out of the retention window or never
// earned a positive score.
type Sweeper struct {
	items         ItemStore
	defaultWindow int
	now           func() time.Time
}

func NewSweeper(items ItemStore, defaultWindowHours int) *Sweeper {
	if defaultWindowHours <= 0 {
		defaultWindowHours = DefaultWindowHours
	}
	return &Sweeper{
		items:         items,
		defaultWindow: defaultWindowHours,
		now:           time.Now,
	}
}

// Sweep deletes stale items. A windowHours of zero or less falls back to the
// configured default window.
func (s *Sweeper) Sweep(ctx context.Context, windowHours int) (Result, error) {
	if windowHours <= 0 {
		windowHours = s.defaultWindow
	}
	cutoff := s.now().UTC().Add(-time.Duration(windowHours) * time.Hour)

	expired, lowScore, err := s.items.SweepStale(ctx, cutoff)
	if err != nil {
		return Result{}, fmt.Errorf("sweep stale items: %w", err)
	}

	slog.Info("Retention sweep completed",
		"window_hours", windowHours, "expired", expired, "low_score", lowScore)

	return Result{Expired: expired, LowScore: lowScore}, nil
}
