// Package matcher pairs Polymarket markets with the Kalshi markets that
// represent the same real-world event. Matching is one-directional
// (Polymarket to Kalshi) and greedy: each Kalshi market is consumed by at
// most one pair so the same contract is never cited twice.
package matcher

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkozera/arbfinder/internal/domain"
)

const (
	// DefaultThreshold is the minimum combined score to accept a match.
	DefaultThreshold = 60.0

	// categoryBonus is added when both snapshots share a category.
	categoryBonus = 15.0
)

// Config configures a Matcher.
type Config struct {
	Threshold float64         // 0-100; pairs below this score are not emitted
	TieBreak  domain.TieBreak // how equal-score candidates are resolved
}

// Matcher finds cross-platform pairs by title similarity with a
// category-equality bonus.
type Matcher struct {
	threshold float64
	tieBreak  domain.TieBreak
	logger    *slog.Logger
}

// New creates a Matcher. A zero threshold falls back to DefaultThreshold and
// an empty tie-break policy falls back to first-candidate-wins.
func New(cfg Config, logger *slog.Logger) *Matcher {
	threshold := cfg.Threshold
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	tieBreak := cfg.TieBreak
	if tieBreak == "" {
		tieBreak = domain.TieBreakFirst
	}
	return &Matcher{
		threshold: threshold,
		tieBreak:  tieBreak,
		logger:    logger.With(slog.String("component", "matcher")),
	}
}

// Score computes the combined match score for a candidate pair: title
// similarity capped at 100 after the category bonus.
func (m *Matcher) Score(poly, kalshi domain.MarketSnapshot) float64 {
	score := TitleSimilarity(poly.Title, kalshi.Title)
	if score <= 0 {
		return 0
	}
	if poly.Category == kalshi.Category {
		score += categoryBonus
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Match pairs every Polymarket snapshot with its best unclaimed Kalshi
// candidate above the threshold. Output order follows the Polymarket input
// order, so identical inputs always produce identical pairs.
func (m *Matcher) Match(poly, kalshi []domain.MarketSnapshot) []domain.MatchedPair {
	claimed := make(map[string]bool, len(kalshi))
	pairs := make([]domain.MatchedPair, 0)

	for _, p := range poly {
		best := -1
		bestScore := 0.0

		for i, k := range kalshi {
			if claimed[k.Ticker] {
				continue
			}
			score := m.Score(p, k)
			if score < m.threshold {
				continue
			}
			if score > bestScore || (score == bestScore && best >= 0 && m.prefer(k, kalshi[best], p)) {
				best = i
				bestScore = score
			}
		}

		if best < 0 {
			continue
		}

		k := kalshi[best]
		claimed[k.Ticker] = true
		pairs = append(pairs, domain.MatchedPair{
			Polymarket:  p,
			Kalshi:      k,
			MatchScore:  bestScore,
			MatchReason: m.reason(p, k, bestScore),
		})
	}

	return pairs
}

// prefer reports whether candidate should replace incumbent at an equal score,
// according to the configured tie-break policy.
func (m *Matcher) prefer(candidate, incumbent, source domain.MarketSnapshot) bool {
	switch m.tieBreak {
	case domain.TieBreakVolume:
		return candidate.Volume > incumbent.Volume
	case domain.TieBreakCategory:
		return candidate.Category == source.Category && incumbent.Category != source.Category
	default:
		// first-candidate-wins: never replace.
		return false
	}
}

func (m *Matcher) reason(p, k domain.MarketSnapshot, score float64) string {
	parts := []string{fmt.Sprintf("title similarity %.0f", TitleSimilarity(p.Title, k.Title))}
	if p.Category == k.Category {
		parts = append(parts, fmt.Sprintf("category %s +%.0f", p.Category, categoryBonus))
	}
	return fmt.Sprintf("score %.0f (%s)", score, strings.Join(parts, ", "))
}

// Threshold returns the configured acceptance threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }
