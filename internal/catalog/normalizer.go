// Package catalog normalizes each platform's raw market representation into
// the common MarketSnapshot shape: prices on a single 0-100 cent scale and
// category labels mapped onto the shared taxonomy.
package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
	"github.com/mkozera/arbfinder/internal/platform/kalshi"
	"github.com/mkozera/arbfinder/internal/platform/polymarket"
)

// NormalizeStats tallies records dropped during normalization. Markets missing
// a title or price are dropped silently, never raised.
type NormalizeStats struct {
	Total   int
	Kept    int
	Dropped int
}

// Normalizer maps raw platform payloads into MarketSnapshots.
type Normalizer struct {
	classifier Classifier
}

// NewNormalizer creates a Normalizer using the given classifier for category
// inference.
func NewNormalizer(classifier Classifier) *Normalizer {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	return &Normalizer{classifier: classifier}
}

// NormalizePolymarket converts Gamma API markets to snapshots, scaling the
// 0-1 outcome probabilities to cents. Pure mapping, no side effects.
func (n *Normalizer) NormalizePolymarket(markets []polymarket.APIMarket) ([]domain.MarketSnapshot, NormalizeStats) {
	stats := NormalizeStats{Total: len(markets)}
	snaps := make([]domain.MarketSnapshot, 0, len(markets))

	for i := range markets {
		m := &markets[i]
		title := strings.TrimSpace(m.Question)
		yes, no, ok := m.Prices()
		if title == "" || !ok || yes <= 0 || yes > 1 {
			stats.Dropped++
			continue
		}

		snap := domain.MarketSnapshot{
			Platform: domain.PlatformPolymarket,
			Ticker:   m.Slug,
			Title:    title,
			Category: NormalizeCategory(m.Category, title, n.classifier),
			YesPrice: yes * 100,
			NoPrice:  no * 100,
		}
		if snap.Ticker == "" {
			snap.Ticker = m.ID
		}
		if v, err := strconv.ParseFloat(m.Volume, 64); err == nil {
			snap.Volume = v
		}
		if t, err := time.Parse(time.RFC3339, m.EndDateISO); err == nil {
			snap.ExpiresAt = &t
		}

		snaps = append(snaps, snap)
		stats.Kept++
	}
	return snaps, stats
}

// NormalizeKalshi converts Kalshi API markets to snapshots. Kalshi already
// quotes in cents, so only the category label needs mapping.
func (n *Normalizer) NormalizeKalshi(markets []kalshi.APIMarket) ([]domain.MarketSnapshot, NormalizeStats) {
	stats := NormalizeStats{Total: len(markets)}
	snaps := make([]domain.MarketSnapshot, 0, len(markets))

	for i := range markets {
		m := &markets[i]
		title := strings.TrimSpace(m.Title)
		yes := m.YesPrice()
		if title == "" || yes <= 0 || yes > 100 {
			stats.Dropped++
			continue
		}

		snap := domain.MarketSnapshot{
			Platform: domain.PlatformKalshi,
			Ticker:   m.Ticker,
			Title:    title,
			Category: NormalizeCategory(m.Category, title, n.classifier),
			YesPrice: yes,
			NoPrice:  100 - yes,
			Volume:   float64(m.Volume),
		}
		if t, err := time.Parse(time.RFC3339, m.ExpirationTime); err == nil {
			snap.ExpiresAt = &t
		} else if t, err := time.Parse(time.RFC3339, m.CloseTime); err == nil {
			snap.ExpiresAt = &t
		}

		snaps = append(snaps, snap)
		stats.Kept++
	}
	return snaps, stats
}
