package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
)

// LatestProvider exposes the most recent scan result. The scanner satisfies
// it; tests use a stub.
type LatestProvider interface {
	Latest() (result domain.ScanResult, lastErr error, ok bool)
}

// OpportunityHandler serves current and historical arbitrage opportunities.
type OpportunityHandler struct {
	latest   LatestProvider
	history  domain.OpportunityStore // nil when history is disabled
	defaults domain.ScanParams       // applied when query params are absent
	logger   *slog.Logger
}

// NewOpportunityHandler creates an OpportunityHandler. Pass a nil history
// store to disable the history endpoint. The defaults' Category is applied
// to current-opportunity listings when the request carries none.
func NewOpportunityHandler(latest LatestProvider, history domain.OpportunityStore, defaults domain.ScanParams, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		latest:   latest,
		history:  history,
		defaults: defaults,
		logger:   logger.With(slog.String("handler", "opportunities")),
	}
}

// ListCurrent returns the opportunities from the most recent successful
// pass, optionally filtered by category and minimum spread. Results retain
// their scan order (spread descending).
// GET /api/opportunities?category=crypto&min_spread=2.5&limit=20
func (h *OpportunityHandler) ListCurrent(w http.ResponseWriter, r *http.Request) {
	result, lastErr, ok := h.latest.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no scan has completed yet")
		return
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		category = h.defaults.Category
	}
	opps := domain.FilterOpportunities(result.Opportunities, domain.ScanParams{
		Category:  category,
		MinSpread: queryFloat(r, "min_spread", 0),
	})

	limit := queryInt(r, "limit", 0)
	if limit > 0 && limit < len(opps) {
		opps = opps[:limit]
	}

	resp := map[string]any{
		"opportunities": opps,
		"count":         len(opps),
		"scanned_at":    result.ScannedAt.Format(time.RFC3339),
		"stats":         result.Stats,
	}
	if lastErr != nil {
		// The retained result is stale; surface the most recent pass failure.
		resp["last_error"] = lastErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListHistory returns persisted opportunities from past passes, newest
// first. Responds 404 when history persistence is disabled.
// GET /api/opportunities/history?category=elections&limit=100
func (h *OpportunityHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "history persistence is disabled")
		return
	}

	limit := queryInt(r, "limit", 100)
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var (
		opps []domain.ArbOpportunity
		err  error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		opps, err = h.history.ListByCategory(r.Context(), domain.Category(category), limit)
	} else {
		opps, err = h.history.ListRecent(r.Context(), limit)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"opportunities": []domain.ArbOpportunity{}, "count": 0})
			return
		}
		h.logger.ErrorContext(r.Context(), "history query failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to query history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"opportunities": opps,
		"count":         len(opps),
	})
}
