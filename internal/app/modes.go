package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkozera/arbfinder/internal/catalog"
	"github.com/mkozera/arbfinder/internal/domain"
	"github.com/mkozera/arbfinder/internal/matcher"
	"github.com/mkozera/arbfinder/internal/ranker"
	"github.com/mkozera/arbfinder/internal/scanner"
	"github.com/mkozera/arbfinder/internal/server"
	"github.com/mkozera/arbfinder/internal/server/handler"
	"github.com/mkozera/arbfinder/internal/server/ws"
)

// idleInterval keeps the scheduler alive for manual triggers when automatic
// refresh is disabled.
const idleInterval = 24 * time.Hour

// retentionSweepInterval is how often aged-out history rows are purged.
const retentionSweepInterval = 6 * time.Hour

// ScanMode runs the scan scheduler without the HTTP API.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	sched := a.buildScheduler(deps)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(ctx)
	})
	if ret := a.buildRetention(deps); ret != nil {
		g.Go(func() error {
			return ret.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return context.Canceled
}

// ServeMode runs the HTTP API without an in-process scanner. The latest
// result is read from the shared result cache, populated by a scan-mode
// replica.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	status := &cacheStatus{cache: deps.ResultCache}
	return a.runServer(ctx, deps, status, nil)
}

// FullMode runs the scanner, scheduler, and HTTP API in one process.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	sched := a.buildScheduler(deps)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(ctx)
	})
	g.Go(func() error {
		return a.runServer(ctx, deps, a.lastScanner, sched)
	})
	if ret := a.buildRetention(deps); ret != nil {
		g.Go(func() error {
			return ret.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return context.Canceled
}

// buildRetention returns the history pruning loop, or nil when history is
// not persisted or retention is unlimited.
func (a *App) buildRetention(deps *Dependencies) *scanner.Retention {
	maxAge := a.cfg.Scanner.HistoryRetention.Duration
	if deps.OpportunityStore == nil || maxAge <= 0 {
		return nil
	}
	return scanner.NewRetention(deps.OpportunityStore, maxAge, retentionSweepInterval, a.logger)
}

// buildScanner assembles the catalog sources, matcher, and ranker into a
// scanner and remembers it for status reporting.
func (a *App) buildScanner(deps *Dependencies) *scanner.Scanner {
	normalizer := catalog.NewNormalizer(catalog.NewKeywordClassifier())

	polySource := catalog.NewPolymarketSource(
		deps.Polymarket, normalizer,
		a.cfg.Polymarket.PageSize, a.cfg.Polymarket.MaxPages,
	)
	kalshiSource := catalog.NewKalshiSource(
		deps.Kalshi, normalizer,
		a.cfg.Kalshi.PageSize, a.cfg.Kalshi.MaxPages,
	)

	m := matcher.New(matcher.Config{
		Threshold: a.cfg.Scanner.MatchThreshold,
		TieBreak:  domain.TieBreak(a.cfg.Scanner.TieBreak),
	}, a.logger)
	r := ranker.New(a.scanParams(), a.logger)

	s := scanner.New(scanner.Config{
		PolymarketSource: polySource,
		KalshiSource:     kalshiSource,
		Matcher:          m,
		Ranker:           r,
		ResultCache:      deps.ResultCache,
		ResultTTL:        a.cfg.Scanner.ResultTTL.Duration,
		Logger:           a.logger,
	})
	a.lastScanner = s
	return s
}

// buildScheduler builds the scanner and its scheduler with all enabled
// result sinks attached.
func (a *App) buildScheduler(deps *Dependencies) *scanner.Scheduler {
	interval := a.cfg.Scanner.RefreshInterval.Duration
	if !a.cfg.Scanner.AutoRefresh {
		interval = idleInterval
	}
	return scanner.NewScheduler(a.buildScanner(deps), interval, buildSinks(deps), a.logger)
}

// runServer starts the HTTP API (and websocket hub when a signal bus is
// available), blocking until ctx is cancelled.
func (a *App) runServer(ctx context.Context, deps *Dependencies, status handler.ScanStatusProvider, trigger handler.Triggerer) error {
	if !a.cfg.Server.Enabled {
		a.logger.InfoContext(ctx, "http server disabled, idling")
		<-ctx.Done()
		return ctx.Err()
	}

	health := make(map[string]handler.Pinger)
	if deps.RedisClient != nil {
		health["redis"] = deps.RedisClient
	}
	if deps.PGClient != nil {
		health["postgres"] = deps.PGClient
	}

	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(health, a.logger),
		Opportunities: handler.NewOpportunityHandler(status, deps.OpportunityStore, a.scanParams(), a.logger),
		Scan:          handler.NewScanHandler(status, trigger, a.logger),
	}

	var hub *ws.Hub
	if deps.SignalBus != nil {
		hub = ws.NewHub(deps.SignalBus, a.logger)
	}

	srv := server.New(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g, ctx := errgroup.WithContext(ctx)
	if hub != nil {
		g.Go(func() error {
			return hub.Run(ctx)
		})
	}
	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("server shutdown", slog.String("error", err.Error()))
		}
		return ctx.Err()
	})

	return g.Wait()
}

// scanParams collects the configured scan knobs: the ranker reads MinSpread
// and FeeBps, the opportunities handler applies Category as its default
// filter.
func (a *App) scanParams() domain.ScanParams {
	feeBps := make(map[domain.Platform]float64, len(a.cfg.Scanner.FeeBps))
	for venue, bps := range a.cfg.Scanner.FeeBps {
		feeBps[domain.Platform(venue)] = bps
	}
	return domain.ScanParams{
		Category:  a.cfg.Scanner.Category,
		MinSpread: a.cfg.Scanner.MinSpread,
		FeeBps:    feeBps,
	}
}

// cacheStatus adapts the shared result cache to the scan status interface
// used by serve-only replicas.
type cacheStatus struct {
	cache domain.ResultCache
}

func (c *cacheStatus) Latest() (domain.ScanResult, error, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := c.cache.Get(ctx)
	if err != nil {
		return domain.ScanResult{}, nil, false
	}
	return result, nil, true
}

func (c *cacheStatus) InFlight() bool { return false }
