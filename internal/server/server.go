// Package server exposes the arbitrage scanner over HTTP and websocket.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
	"github.com/mkozera/arbfinder/internal/server/handler"
	"github.com/mkozera/arbfinder/internal/server/middleware"
	"github.com/mkozera/arbfinder/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // empty disables authentication

	// RateLimit is requests per client IP per RateWindow; zero disables
	// rate limiting.
	RateLimit  int
	RateWindow time.Duration
}

// Handlers aggregates the HTTP handlers the server registers.
type Handlers struct {
	Health        *handler.HealthHandler
	Opportunities *handler.OpportunityHandler
	Scan          *handler.ScanHandler
}

// Server is the HTTP + websocket API server for the arbitrage scanner.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes registered and the middleware chain
// applied. The websocket hub and rate limiter are optional.
func New(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check, no auth required.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Opportunity endpoints.
	mux.HandleFunc("GET /api/opportunities", handlers.Opportunities.ListCurrent)
	mux.HandleFunc("GET /api/opportunities/history", handlers.Opportunities.ListHistory)

	// Scan control endpoints.
	mux.HandleFunc("GET /api/scan/status", handlers.Scan.Status)
	mux.HandleFunc("POST /api/scan/trigger", handlers.Scan.Trigger)

	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey)(h)
	if limiter != nil && cfg.RateLimit > 0 {
		window := cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		h = middleware.RateLimit(limiter, cfg.RateLimit, window)(h)
	}
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      h,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger.With(slog.String("component", "server")),
	}
}

// Start listens for HTTP requests, blocking until the server fails or is
// shut down.
func (s *Server) Start() error {
	s.logger.Info("starting", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
