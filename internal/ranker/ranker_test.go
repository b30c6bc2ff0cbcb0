package ranker

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pair(polyYes, kalshiYes float64) domain.MatchedPair {
	return domain.MatchedPair{
		Polymarket: domain.MarketSnapshot{
			Platform: domain.PlatformPolymarket,
			Ticker:   "fed-cut-march",
			Title:    "Will the Fed cut rates in March?",
			Category: domain.CategoryOther,
			YesPrice: polyYes,
			Volume:   1000,
		},
		Kalshi: domain.MarketSnapshot{
			Platform: domain.PlatformKalshi,
			Ticker:   "FED-26MAR",
			Title:    "Fed cuts rates in March",
			Category: domain.CategoryOther,
			YesPrice: kalshiYes,
			Volume:   2000,
		},
		MatchScore: 100,
	}
}

func TestEvaluateBuysCheaperSellsDearer(t *testing.T) {
	r := New(domain.ScanParams{}, testLogger())
	now := time.Now().UTC()

	// Polymarket quotes yes at 60c, Kalshi at 67c: buy Polymarket, sell
	// Kalshi, spread 7c.
	opp, ok := r.Evaluate(pair(60, 67), now)
	if !ok {
		t.Fatal("Evaluate returned ok=false")
	}
	if opp.BuyPlatform != domain.PlatformPolymarket || opp.SellPlatform != domain.PlatformKalshi {
		t.Errorf("legs = buy %s sell %s, want buy polymarket sell kalshi", opp.BuyPlatform, opp.SellPlatform)
	}
	if opp.SpreadPercent != 7 {
		t.Errorf("spread = %g, want 7", opp.SpreadPercent)
	}
	if opp.BuyPrice != 60 || opp.SellPrice != 67 {
		t.Errorf("prices = %g/%g, want 60/67", opp.BuyPrice, opp.SellPrice)
	}

	// Flipped quotes flip the legs.
	opp, ok = r.Evaluate(pair(67, 60), now)
	if !ok {
		t.Fatal("Evaluate returned ok=false")
	}
	if opp.BuyPlatform != domain.PlatformKalshi || opp.SellPlatform != domain.PlatformPolymarket {
		t.Errorf("legs = buy %s sell %s, want buy kalshi sell polymarket", opp.BuyPlatform, opp.SellPlatform)
	}
	if opp.SpreadPercent != 7 {
		t.Errorf("spread = %g, want 7", opp.SpreadPercent)
	}
}

func TestEvaluateRejectsNonPositiveSpread(t *testing.T) {
	r := New(domain.ScanParams{}, testLogger())
	now := time.Now().UTC()

	if _, ok := r.Evaluate(pair(50, 50), now); ok {
		t.Error("equal prices produced an opportunity")
	}
	if _, ok := r.Evaluate(pair(0, 50), now); ok {
		t.Error("unpriced leg produced an opportunity")
	}
}

func TestEvaluateFees(t *testing.T) {
	// 700 bps on the Kalshi leg only.
	r := New(domain.ScanParams{FeeBps: map[domain.Platform]float64{
		domain.PlatformKalshi: 700,
	}}, testLogger())
	now := time.Now().UTC()

	opp, ok := r.Evaluate(pair(60, 67), now)
	if !ok {
		t.Fatal("Evaluate returned ok=false")
	}
	wantFee := 67 * 700 / 10_000.0 // sell leg is Kalshi
	if got := opp.SpreadPercent - opp.EstimatedProfit; !almostEqual(got, wantFee) {
		t.Errorf("fee cost = %g, want %g", got, wantFee)
	}
	if opp.EstimatedProfit > opp.SpreadPercent {
		t.Error("profit exceeds spread")
	}
}

func TestEvaluateFeesBothLegs(t *testing.T) {
	// Each leg pays its own venue's fee on its traded price.
	r := New(domain.ScanParams{FeeBps: map[domain.Platform]float64{
		domain.PlatformPolymarket: 200,
		domain.PlatformKalshi:     700,
	}}, testLogger())
	now := time.Now().UTC()

	opp, ok := r.Evaluate(pair(60, 67), now)
	if !ok {
		t.Fatal("Evaluate returned ok=false")
	}
	wantFee := 60*200/10_000.0 + 67*700/10_000.0 // buy polymarket + sell kalshi
	if got := opp.SpreadPercent - opp.EstimatedProfit; !almostEqual(got, wantFee) {
		t.Errorf("fee cost = %g, want %g", got, wantFee)
	}
}

func TestEvaluateProfitNeverExceedsSpread(t *testing.T) {
	r := New(domain.ScanParams{FeeBps: map[domain.Platform]float64{
		domain.PlatformPolymarket: 200,
		domain.PlatformKalshi:     700,
	}}, testLogger())
	now := time.Now().UTC()

	for _, prices := range [][2]float64{{60, 67}, {10, 90}, {49, 51}, {1, 99}} {
		opp, ok := r.Evaluate(pair(prices[0], prices[1]), now)
		if !ok {
			t.Fatalf("Evaluate(%v) not ok", prices)
		}
		if opp.EstimatedProfit > opp.SpreadPercent {
			t.Errorf("prices %v: profit %g > spread %g", prices, opp.EstimatedProfit, opp.SpreadPercent)
		}
	}
}

func TestRankFiltersAndSorts(t *testing.T) {
	r := New(domain.ScanParams{MinSpread: 1.0}, testLogger())
	now := time.Now().UTC()

	small := pair(50, 50.5) // 0.5c, below floor
	mid := pair(60, 67)     // 7c
	big := pair(20, 30)     // 10c
	big.Polymarket.Ticker = "big"
	mid.Polymarket.Ticker = "mid"

	opps := r.Rank([]domain.MatchedPair{small, mid, big}, now)
	if len(opps) != 2 {
		t.Fatalf("opps = %d, want 2 (sub-threshold dropped)", len(opps))
	}
	if opps[0].SpreadPercent != 10 || opps[1].SpreadPercent != 7 {
		t.Errorf("order = %g, %g, want descending 10, 7", opps[0].SpreadPercent, opps[1].SpreadPercent)
	}
}

func TestRankTieBrokenByVolume(t *testing.T) {
	r := New(domain.ScanParams{MinSpread: 1.0}, testLogger())
	now := time.Now().UTC()

	thin := pair(60, 67)
	thin.Polymarket.Ticker = "thin"
	thin.Polymarket.Volume = 10
	thin.Kalshi.Volume = 10

	deep := pair(60, 67)
	deep.Polymarket.Ticker = "deep"
	deep.Polymarket.Volume = 5000
	deep.Kalshi.Volume = 5000

	opps := r.Rank([]domain.MatchedPair{thin, deep}, now)
	if len(opps) != 2 {
		t.Fatalf("opps = %d, want 2", len(opps))
	}
	if opps[0].MatchKey != "deep|FED-26MAR" {
		t.Errorf("first = %s, want higher combined volume first", opps[0].MatchKey)
	}
}

func TestRankIdempotent(t *testing.T) {
	r := New(domain.ScanParams{MinSpread: 1.0}, testLogger())
	now := time.Now().UTC()
	pairs := []domain.MatchedPair{pair(60, 67), pair(20, 35)}
	pairs[1].Polymarket.Ticker = "other"

	first := r.Rank(pairs, now)
	second := r.Rank(pairs, now)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("ID differs at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
		if first[i].MatchKey != second[i].MatchKey {
			t.Errorf("order differs at %d", i)
		}
	}
}

func TestEvaluateEarlierExpiryWins(t *testing.T) {
	r := New(domain.ScanParams{}, testLogger())
	now := time.Now().UTC()

	early := now.Add(24 * time.Hour)
	late := now.Add(48 * time.Hour)

	p := pair(60, 67)
	p.Polymarket.ExpiresAt = &late
	p.Kalshi.ExpiresAt = &early

	opp, ok := r.Evaluate(p, now)
	if !ok {
		t.Fatal("Evaluate returned ok=false")
	}
	if opp.ExpiresAt == nil || !opp.ExpiresAt.Equal(early) {
		t.Errorf("expires_at = %v, want earlier leg %v", opp.ExpiresAt, early)
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
