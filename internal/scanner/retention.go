package scanner

import (
	"context"
	"log/slog"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
)

// Retention prunes persisted opportunities that have aged out of the history
// view. One sweep runs at startup, then one per interval.
type Retention struct {
	store    domain.OpportunityStore
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewRetention creates a Retention deleting rows older than maxAge on every
// sweep.
func NewRetention(store domain.OpportunityStore, maxAge, interval time.Duration, logger *slog.Logger) *Retention {
	return &Retention{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger.With(slog.String("component", "retention")),
		now:      time.Now,
	}
}

// Run executes the sweep loop until ctx is cancelled. A failing sweep is
// logged and retried on the next tick, never fatal.
func (r *Retention) Run(ctx context.Context) error {
	r.logger.Info("retention starting",
		slog.Duration("max_age", r.maxAge),
		slog.Duration("interval", r.interval),
	)

	r.sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("retention stopped")
			return ctx.Err()
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Retention) sweep(ctx context.Context) {
	cutoff := r.now().Add(-r.maxAge)
	deleted, err := r.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Warn("retention sweep failed", slog.String("error", err.Error()))
		}
		return
	}
	if deleted > 0 {
		r.logger.Info("pruned opportunity history",
			slog.Int64("deleted", deleted),
			slog.Time("cutoff", cutoff),
		)
	}
}
