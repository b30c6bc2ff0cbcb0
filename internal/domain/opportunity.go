package domain

import (
	"fmt"
	"time"
)

// MatchedPair links a Polymarket snapshot with the Kalshi snapshot judged to
// represent the same real-world event. Pairs are transient: owned by a single
// ranking pass and discarded once the opportunity list is produced.
type MatchedPair struct {
	Polymarket  MarketSnapshot `json:"polymarket"`
	Kalshi      MarketSnapshot `json:"kalshi"`
	MatchScore  float64        `json:"match_score"` // 0-100
	MatchReason string         `json:"match_reason"`
}

// MatchKey returns a stable identifier for the pair, independent of the scan
// that produced it.
func (p MatchedPair) MatchKey() string {
	return fmt.Sprintf("%s|%s", p.Polymarket.Ticker, p.Kalshi.Ticker)
}

// ArbOpportunity is a derived, read-only ranking output. Regenerated every
// scan pass, never mutated in place.
type ArbOpportunity struct {
	ID              string     `json:"id"`
	MatchKey        string     `json:"match_key"`
	EventTitle      string     `json:"event_title"`
	Category        Category   `json:"category"`
	SpreadPercent   float64    `json:"spread_percent"` // cents, sell - buy
	BuyPlatform     Platform   `json:"buy_platform"`
	SellPlatform    Platform   `json:"sell_platform"`
	BuyPrice        float64    `json:"buy_price"`  // cents
	SellPrice       float64    `json:"sell_price"` // cents
	BuyVolume       float64    `json:"buy_volume"`
	SellVolume      float64    `json:"sell_volume"`
	EstimatedProfit float64    `json:"estimated_profit"` // cents, net of fees
	MatchScore      float64    `json:"match_score"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	DetectedAt      time.Time  `json:"detected_at"`
}

// CombinedVolume is the tie-break key when two opportunities share a spread.
func (o ArbOpportunity) CombinedVolume() float64 {
	return o.BuyVolume + o.SellVolume
}

// ScanStats summarizes a single scan pass for the UI.
type ScanStats struct {
	PolymarketCount    int `json:"polymarket_count"`
	KalshiCount        int `json:"kalshi_count"`
	DroppedPolymarket  int `json:"dropped_polymarket"`
	DroppedKalshi      int `json:"dropped_kalshi"`
	MatchedPairs       int `json:"matched_pairs"`
	OpportunitiesFound int `json:"opportunities_found"`
}

// ScanResult is the full output of one scan pass. The previous result remains
// visible to callers until the next successful pass replaces it.
type ScanResult struct {
	Opportunities []ArbOpportunity `json:"opportunities"`
	Stats         ScanStats        `json:"stats"`
	ScannedAt     time.Time        `json:"scanned_at"`
	Generation    uint64           `json:"generation"`
}

// TieBreak selects how the matcher resolves equal-score candidates.
type TieBreak string

const (
	// TieBreakFirst keeps the first candidate encountered at the top score.
	TieBreakFirst TieBreak = "first"
	// TieBreakVolume prefers the candidate with higher volume.
	TieBreakVolume TieBreak = "volume"
	// TieBreakCategory prefers a candidate whose category matches the source.
	TieBreakCategory TieBreak = "category"
)

// ScanParams are the tunable knobs applied to scan output: the ranker reads
// MinSpread and FeeBps, result filtering reads Category and MinSpread.
type ScanParams struct {
	Category  string               // category filter, "" or "all" for everything
	MinSpread float64              // cents; opportunities below are filtered out
	FeeBps    map[Platform]float64 // per-venue fee assumption in basis points
}

// FilterOpportunities returns the subset of opps satisfying the params. The
// input slice is not modified.
func FilterOpportunities(opps []ArbOpportunity, p ScanParams) []ArbOpportunity {
	out := make([]ArbOpportunity, 0, len(opps))
	for _, o := range opps {
		if p.Category != "" && p.Category != "all" && string(o.Category) != p.Category {
			continue
		}
		if o.SpreadPercent < p.MinSpread {
			continue
		}
		out = append(out, o)
	}
	return out
}
