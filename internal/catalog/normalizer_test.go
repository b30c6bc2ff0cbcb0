package catalog

import (
	"testing"

	"github.com/mkozera/arbfinder/internal/domain"
	"github.com/mkozera/arbfinder/internal/platform/kalshi"
	"github.com/mkozera/arbfinder/internal/platform/polymarket"
)

func TestNormalizePolymarketScalesToCents(t *testing.T) {
	n := NewNormalizer(nil)

	snaps, stats := n.NormalizePolymarket([]polymarket.APIMarket{
		{
			ID:            "0x123",
			Question:      "Will the Fed cut rates in March?",
			Slug:          "fed-cut-march",
			Category:      "Economy",
			OutcomePrices: `["0.6","0.4"]`,
			Volume:        "125000.5",
			EndDateISO:    "2026-03-31T00:00:00Z",
		},
	})

	if stats.Kept != 1 || stats.Dropped != 0 {
		t.Fatalf("stats = %+v, want 1 kept 0 dropped", stats)
	}
	s := snaps[0]
	if s.Platform != domain.PlatformPolymarket {
		t.Errorf("platform = %q", s.Platform)
	}
	if s.Ticker != "fed-cut-march" {
		t.Errorf("ticker = %q, want slug", s.Ticker)
	}
	if s.YesPrice != 60 || s.NoPrice != 40 {
		t.Errorf("prices = %g/%g, want 60/40", s.YesPrice, s.NoPrice)
	}
	if s.Volume != 125000.5 {
		t.Errorf("volume = %g", s.Volume)
	}
	if s.ExpiresAt == nil {
		t.Error("expires_at not parsed")
	}
}

func TestNormalizePolymarketDropsMalformed(t *testing.T) {
	n := NewNormalizer(nil)

	snaps, stats := n.NormalizePolymarket([]polymarket.APIMarket{
		{Question: "", OutcomePrices: `["0.5","0.5"]`},            // no title
		{Question: "Valid?", OutcomePrices: `not json`},           // bad prices
		{Question: "Zero?", OutcomePrices: `["0","1"]`},           // zero yes price
		{Question: "Out of range?", OutcomePrices: `["1.5","0"]`}, // > 1
		{Question: "Kept?", Slug: "kept", OutcomePrices: `["0.5","0.5"]`},
	})

	if stats.Total != 5 || stats.Kept != 1 || stats.Dropped != 4 {
		t.Fatalf("stats = %+v, want total 5 kept 1 dropped 4", stats)
	}
	if len(snaps) != 1 || snaps[0].Ticker != "kept" {
		t.Fatalf("snaps = %+v", snaps)
	}
}

func TestNormalizePolymarketFallsBackToID(t *testing.T) {
	n := NewNormalizer(nil)

	snaps, _ := n.NormalizePolymarket([]polymarket.APIMarket{
		{ID: "0xabc", Question: "No slug?", OutcomePrices: `["0.3","0.7"]`},
	})
	if len(snaps) != 1 || snaps[0].Ticker != "0xabc" {
		t.Fatalf("ticker = %q, want id fallback", snaps[0].Ticker)
	}
}

func TestNormalizeKalshiPassesThroughCents(t *testing.T) {
	n := NewNormalizer(nil)

	snaps, stats := n.NormalizeKalshi([]kalshi.APIMarket{
		{
			Ticker:         "FED-26MAR",
			Title:          "Fed cuts rates in March",
			Category:       "Economics",
			YesBid:         66,
			YesAsk:         68,
			Volume:         40000,
			ExpirationTime: "2026-03-31T12:00:00Z",
		},
	})

	if stats.Kept != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	s := snaps[0]
	if s.YesPrice != 67 {
		t.Errorf("yes = %g, want bid/ask midpoint 67", s.YesPrice)
	}
	if s.NoPrice != 33 {
		t.Errorf("no = %g, want 100 - yes", s.NoPrice)
	}
	if s.Volume != 40000 {
		t.Errorf("volume = %g", s.Volume)
	}
}

func TestNormalizeKalshiDropsUnpriced(t *testing.T) {
	n := NewNormalizer(nil)

	_, stats := n.NormalizeKalshi([]kalshi.APIMarket{
		{Ticker: "A", Title: "No quotes at all"},
		{Ticker: "B", Title: ""},
	})
	if stats.Dropped != 2 || stats.Kept != 0 {
		t.Fatalf("stats = %+v, want 2 dropped", stats)
	}
}

func TestNormalizeKalshiExpiryFallsBackToCloseTime(t *testing.T) {
	n := NewNormalizer(nil)

	snaps, _ := n.NormalizeKalshi([]kalshi.APIMarket{
		{Ticker: "A", Title: "Has close time only", YesAsk: 50, CloseTime: "2026-06-01T00:00:00Z"},
	})
	if snaps[0].ExpiresAt == nil {
		t.Fatal("expires_at not taken from close_time")
	}
}
