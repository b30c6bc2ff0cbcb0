// Package scanner runs the cross-platform scan pass: fetch both catalogs
// concurrently, match equivalent markets, and rank the spreads. Each pass is
// an independent computation over two same-tick catalogs; the previous result
// stays visible until the next successful pass replaces it.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkozera/arbfinder/internal/catalog"
	"github.com/mkozera/arbfinder/internal/domain"
	"github.com/mkozera/arbfinder/internal/matcher"
	"github.com/mkozera/arbfinder/internal/ranker"
)

// Scanner computes scan passes and retains the latest successful result.
type Scanner struct {
	polySource   catalog.Source
	kalshiSource catalog.Source
	matcher      *matcher.Matcher
	ranker       *ranker.Ranker
	cache        domain.ResultCache // optional
	resultTTL    time.Duration
	logger       *slog.Logger

	generation atomic.Uint64

	mu      sync.Mutex
	running bool
	last    *domain.ScanResult
	lastErr error
}

// Config configures a Scanner.
type Config struct {
	PolymarketSource catalog.Source
	KalshiSource     catalog.Source
	Matcher          *matcher.Matcher
	Ranker           *ranker.Ranker
	ResultCache      domain.ResultCache
	ResultTTL        time.Duration
	Logger           *slog.Logger
}

// New creates a Scanner.
func New(cfg Config) *Scanner {
	ttl := cfg.ResultTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Scanner{
		polySource:   cfg.PolymarketSource,
		kalshiSource: cfg.KalshiSource,
		matcher:      cfg.Matcher,
		ranker:       cfg.Ranker,
		cache:        cfg.ResultCache,
		resultTTL:    ttl,
		logger:       cfg.Logger.With(slog.String("component", "scanner")),
	}
}

// Scan runs one full pass. At most one pass is in flight at a time; a second
// caller gets ErrScanInFlight instead of overlapping result sets. On upstream
// failure the pass is aborted, the previous result is retained, and a single
// error is surfaced.
func (s *Scanner) Scan(ctx context.Context) (*domain.ScanResult, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, domain.ErrScanInFlight
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	gen := s.generation.Add(1)
	result, err := s.pass(ctx, gen)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = err
		return nil, err
	}

	// A newer pass may have been admitted while this one was in flight
	// (Scan is serialized, but Invalidate bumps the generation). Stale
	// results are discarded, never applied.
	if s.generation.Load() != gen {
		return nil, domain.ErrStaleResult
	}

	s.last = result
	s.lastErr = nil
	return result, nil
}

// pass fetches both catalogs concurrently, then matches and ranks them. The
// two catalogs always come from the same tick; no partial matching of one
// stale and one fresh catalog is permitted.
func (s *Scanner) pass(ctx context.Context, gen uint64) (*domain.ScanResult, error) {
	start := time.Now().UTC()

	var (
		polySnaps   []domain.MarketSnapshot
		kalshiSnaps []domain.MarketSnapshot
		polyStats   catalog.NormalizeStats
		kalshiStats catalog.NormalizeStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		polySnaps, polyStats, err = s.polySource.Snapshots(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		kalshiSnaps, kalshiStats, err = s.kalshiSource.Snapshots(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scanner: pass aborted: %w", err)
	}

	pairs := s.matcher.Match(polySnaps, kalshiSnaps)
	opps := s.ranker.Rank(pairs, start)

	result := &domain.ScanResult{
		Opportunities: opps,
		Stats: domain.ScanStats{
			PolymarketCount:    polyStats.Kept,
			KalshiCount:        kalshiStats.Kept,
			DroppedPolymarket:  polyStats.Dropped,
			DroppedKalshi:      kalshiStats.Dropped,
			MatchedPairs:       len(pairs),
			OpportunitiesFound: len(opps),
		},
		ScannedAt:  start,
		Generation: gen,
	}

	s.logger.InfoContext(ctx, "scan pass complete",
		slog.Int("polymarket", result.Stats.PolymarketCount),
		slog.Int("kalshi", result.Stats.KalshiCount),
		slog.Int("matched", result.Stats.MatchedPairs),
		slog.Int("opportunities", result.Stats.OpportunitiesFound),
		slog.Duration("elapsed", time.Since(start)),
	)

	if s.cache != nil {
		if err := s.cache.Set(ctx, *result, s.resultTTL); err != nil {
			s.logger.WarnContext(ctx, "result cache set failed",
				slog.String("error", err.Error()),
			)
		}
	}

	return result, nil
}

// Latest returns the most recent successful result and the error from the
// most recent pass, if any. ok is false before the first successful pass.
func (s *Scanner) Latest() (result domain.ScanResult, lastErr error, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return domain.ScanResult{}, s.lastErr, false
	}
	return *s.last, s.lastErr, true
}

// Invalidate bumps the generation counter so any in-flight pass is discarded
// when it completes, and drops the cached result. Used when the caller
// abandons a pending refresh (navigation away, shutdown).
func (s *Scanner) Invalidate(ctx context.Context) {
	s.generation.Add(1)
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WarnContext(ctx, "result cache invalidate failed",
				slog.String("error", err.Error()),
			)
		}
	}
}

// InFlight reports whether a pass is currently running.
func (s *Scanner) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
