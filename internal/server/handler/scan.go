package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
)

// ScanStatusProvider reports the scanner's current state.
type ScanStatusProvider interface {
	LatestProvider
	InFlight() bool
}

// Triggerer requests an immediate scan pass.
type Triggerer interface {
	Trigger(ctx context.Context) error
}

// ScanHandler serves scan status and manual trigger endpoints.
type ScanHandler struct {
	status  ScanStatusProvider
	trigger Triggerer
	logger  *slog.Logger
}

// NewScanHandler creates a ScanHandler. The trigger may be nil in serve-only
// deployments where no scheduler runs in-process.
func NewScanHandler(status ScanStatusProvider, trigger Triggerer, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{
		status:  status,
		trigger: trigger,
		logger:  logger.With(slog.String("handler", "scan")),
	}
}

// Status reports whether a pass is in flight and summarizes the last
// completed one.
// GET /api/scan/status
func (h *ScanHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"in_flight": h.status.InFlight(),
	}

	if result, lastErr, ok := h.status.Latest(); ok {
		resp["last_scanned_at"] = result.ScannedAt.Format(time.RFC3339)
		resp["generation"] = result.Generation
		resp["stats"] = result.Stats
		if lastErr != nil {
			resp["last_error"] = lastErr.Error()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Trigger runs a scan pass immediately, outside the regular refresh
// schedule. Returns 409 when a pass is already in flight and 502 when the
// pass fails against an upstream platform.
// POST /api/scan/trigger
func (h *ScanHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if h.trigger == nil {
		writeError(w, http.StatusNotFound, "scanning is not enabled on this instance")
		return
	}

	if err := h.trigger.Trigger(r.Context()); err != nil {
		switch {
		case errors.Is(err, domain.ErrScanInFlight):
			writeError(w, http.StatusConflict, "a scan is already in progress")
		case errors.Is(err, domain.ErrUpstreamFetch):
			h.logger.WarnContext(r.Context(), "triggered scan failed upstream", slog.String("error", err.Error()))
			writeError(w, http.StatusBadGateway, "scan failed: "+err.Error())
		default:
			h.logger.ErrorContext(r.Context(), "triggered scan failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "scan failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}
