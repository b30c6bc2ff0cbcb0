package scanner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
)

// ResultSink receives each successful scan result. Sinks are best-effort:
// a failing sink is logged and skipped, never fails the pass.
type ResultSink interface {
	Name() string
	Publish(ctx context.Context, result domain.ScanResult) error
}

// Scheduler drives the scanner on an explicit ticker with cancellation,
// replacing ambient timers so the refresh loop is deterministic to test.
type Scheduler struct {
	scanner  *Scanner
	interval time.Duration
	sinks    []ResultSink
	trigger  chan chan error
	logger   *slog.Logger
}

// NewScheduler creates a Scheduler polling at the given interval.
func NewScheduler(s *Scanner, interval time.Duration, sinks []ResultSink, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		scanner:  s,
		interval: interval,
		sinks:    sinks,
		trigger:  make(chan chan error, 1),
		logger:   logger.With(slog.String("component", "scheduler")),
	}
}

// Run executes the polling loop until ctx is cancelled. The first pass runs
// immediately so callers are not left without data for a full interval. A
// tick that arrives while a pass is still in flight is skipped rather than
// overlapped.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler starting", slog.Duration("interval", s.interval))

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Abandon any pending pass; its result must not be applied.
			s.scanner.Invalidate(context.WithoutCancel(ctx))
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		case reply := <-s.trigger:
			reply <- s.tick(ctx)
		}
	}
}

// Trigger requests an immediate pass and waits for it to complete. It is used
// by the manual-refresh endpoint.
func (s *Scheduler) Trigger(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case s.trigger <- reply:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tick runs one pass and fans the result out to every sink.
func (s *Scheduler) tick(ctx context.Context) error {
	result, err := s.scanner.Scan(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrScanInFlight) {
			s.logger.Debug("tick skipped, pass in flight")
			return err
		}
		if errors.Is(err, domain.ErrStaleResult) || ctx.Err() != nil {
			return err
		}
		s.logger.Error("scan pass failed", slog.String("error", err.Error()))
		return err
	}

	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, *result); err != nil {
			s.logger.Warn("result sink failed",
				slog.String("sink", sink.Name()),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}
