package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is a named dependency that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the health-check endpoint, probing each registered
// backing dependency.
type HealthHandler struct {
	deps   map[string]Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler. The deps map associates a
// dependency name ("redis", "postgres") with its pinger; nil values are
// skipped so optional backends can be passed unconditionally.
func NewHealthHandler(deps map[string]Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{deps: deps, logger: logger}
}

// HealthCheck responds with the server status and per-dependency
// connectivity. Any failing dependency degrades the overall status but the
// endpoint still returns 200; orchestrators that need a hard signal can
// inspect the body.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	deps := make(map[string]string, len(h.deps))
	for name, p := range h.deps {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       status,
		"dependencies": deps,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}
