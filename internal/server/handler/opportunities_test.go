package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
)

type stubLatest struct {
	result   domain.ScanResult
	lastErr  error
	ok       bool
	inFlight bool
}

func (s *stubLatest) Latest() (domain.ScanResult, error, bool) {
	return s.result, s.lastErr, s.ok
}

func (s *stubLatest) InFlight() bool { return s.inFlight }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleResult() domain.ScanResult {
	return domain.ScanResult{
		Opportunities: []domain.ArbOpportunity{
			{MatchKey: "a|A", Category: domain.CategoryCrypto, SpreadPercent: 9},
			{MatchKey: "b|B", Category: domain.CategoryElections, SpreadPercent: 4},
			{MatchKey: "c|C", Category: domain.CategoryCrypto, SpreadPercent: 2},
		},
		Stats:     domain.ScanStats{MatchedPairs: 3, OpportunitiesFound: 3},
		ScannedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestListCurrentBeforeFirstScan(t *testing.T) {
	h := NewOpportunityHandler(&stubLatest{}, nil, domain.ScanParams{}, testLogger())

	rec := httptest.NewRecorder()
	h.ListCurrent(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestListCurrentFilters(t *testing.T) {
	h := NewOpportunityHandler(&stubLatest{result: sampleResult(), ok: true}, nil, domain.ScanParams{}, testLogger())

	rec := httptest.NewRecorder()
	h.ListCurrent(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities?category=crypto&min_spread=3", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Opportunities []domain.ArbOpportunity `json:"opportunities"`
		Count         int                     `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Count != 1 || body.Opportunities[0].MatchKey != "a|A" {
		t.Errorf("filtered = %+v, want only a|A", body.Opportunities)
	}
}

func TestListCurrentLimit(t *testing.T) {
	h := NewOpportunityHandler(&stubLatest{result: sampleResult(), ok: true}, nil, domain.ScanParams{}, testLogger())

	rec := httptest.NewRecorder()
	h.ListCurrent(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities?limit=2", nil))

	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 {
		t.Errorf("count = %d, want 2", body.Count)
	}
}

func TestListCurrentDefaultCategory(t *testing.T) {
	defaults := domain.ScanParams{Category: "crypto"}
	h := NewOpportunityHandler(&stubLatest{result: sampleResult(), ok: true}, nil, defaults, testLogger())

	// No category in the query: the configured default applies.
	rec := httptest.NewRecorder()
	h.ListCurrent(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities", nil))

	var body struct {
		Opportunities []domain.ArbOpportunity `json:"opportunities"`
		Count         int                     `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 {
		t.Fatalf("count = %d, want the 2 crypto opportunities", body.Count)
	}
	for _, o := range body.Opportunities {
		if o.Category != domain.CategoryCrypto {
			t.Errorf("category = %q, want crypto", o.Category)
		}
	}

	// An explicit query param overrides the default.
	rec = httptest.NewRecorder()
	h.ListCurrent(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities?category=all", nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 3 {
		t.Errorf("count with category=all = %d, want 3", body.Count)
	}
}

func TestListHistoryDisabled(t *testing.T) {
	h := NewOpportunityHandler(&stubLatest{ok: true}, nil, domain.ScanParams{}, testLogger())

	rec := httptest.NewRecorder()
	h.ListHistory(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities/history", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestScanStatus(t *testing.T) {
	stub := &stubLatest{result: sampleResult(), ok: true, inFlight: true}
	h := NewScanHandler(stub, nil, testLogger())

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/scan/status", nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["in_flight"] != true {
		t.Errorf("in_flight = %v", body["in_flight"])
	}
	if _, ok := body["last_scanned_at"]; !ok {
		t.Error("last_scanned_at missing")
	}
}

func TestScanTriggerNotEnabled(t *testing.T) {
	h := NewScanHandler(&stubLatest{}, nil, testLogger())

	rec := httptest.NewRecorder()
	h.Trigger(rec, httptest.NewRequest(http.MethodPost, "/api/scan/trigger", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
