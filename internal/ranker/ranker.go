// Package ranker turns matched pairs into ranked arbitrage opportunities.
// It decides which platform offers the cheaper yes exposure, computes the
// spread on the 0-100 cent scale, and nets out a per-venue fee assumption.
package ranker

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mkozera/arbfinder/internal/domain"
)

// DefaultMinSpread is the minimum spread (in cents) emitted when the caller
// does not supply a threshold.
const DefaultMinSpread = 1.0

// Ranker is a stateless, idempotent pure function over matched pairs. It is
// re-run on every scan tick; no state carries over between runs.
type Ranker struct {
	minSpread float64
	feeBps    map[domain.Platform]float64
	logger    *slog.Logger
}

// New creates a Ranker from the scan parameters; only MinSpread and FeeBps
// are read here. A non-positive MinSpread falls back to DefaultMinSpread.
func New(params domain.ScanParams, logger *slog.Logger) *Ranker {
	minSpread := params.MinSpread
	if minSpread <= 0 {
		minSpread = DefaultMinSpread
	}
	feeBps := make(map[domain.Platform]float64, len(params.FeeBps))
	for venue, bps := range params.FeeBps {
		if bps > 0 {
			feeBps[venue] = bps
		}
	}
	return &Ranker{
		minSpread: minSpread,
		feeBps:    feeBps,
		logger:    logger.With(slog.String("component", "ranker")),
	}
}

// Rank converts pairs into opportunities, filters them by the minimum spread,
// and sorts descending by spread with ties broken by higher combined volume.
// Pairs with no positive spread or missing prices produce nothing.
func (r *Ranker) Rank(pairs []domain.MatchedPair, detectedAt time.Time) []domain.ArbOpportunity {
	opps := make([]domain.ArbOpportunity, 0, len(pairs))
	for _, pair := range pairs {
		opp, ok := r.Evaluate(pair, detectedAt)
		if !ok {
			continue
		}
		if opp.SpreadPercent < r.minSpread {
			continue
		}
		opps = append(opps, opp)
	}

	sort.SliceStable(opps, func(i, j int) bool {
		if opps[i].SpreadPercent != opps[j].SpreadPercent {
			return opps[i].SpreadPercent > opps[j].SpreadPercent
		}
		return opps[i].CombinedVolume() > opps[j].CombinedVolume()
	})
	return opps
}

// Evaluate computes the opportunity for a single pair. ok is false when
// either side lacks usable prices or the spread is not positive.
func (r *Ranker) Evaluate(pair domain.MatchedPair, detectedAt time.Time) (domain.ArbOpportunity, bool) {
	poly, kalshi := pair.Polymarket, pair.Kalshi
	if !poly.HasPrices() || !kalshi.HasPrices() {
		return domain.ArbOpportunity{}, false
	}

	buy, sell := poly, kalshi
	if kalshi.YesPrice < poly.YesPrice {
		buy, sell = kalshi, poly
	}

	spread := sell.YesPrice - buy.YesPrice
	if spread <= 0 {
		return domain.ArbOpportunity{}, false
	}

	// Fee cost in cents: each leg pays its venue's assumed fee on the
	// traded price. Fees are never negative, so profit <= spread holds.
	feeCost := buy.YesPrice*r.feeBps[buy.Platform]/10_000 +
		sell.YesPrice*r.feeBps[sell.Platform]/10_000

	// Deterministic ID: the same pair at the same tick always yields the
	// same opportunity, so re-running a pass is idempotent.
	matchKey := pair.MatchKey()
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(matchKey+"@"+detectedAt.UTC().Format(time.RFC3339Nano)))

	opp := domain.ArbOpportunity{
		ID:              id.String(),
		MatchKey:        matchKey,
		EventTitle:      poly.Title,
		Category:        poly.Category,
		SpreadPercent:   spread,
		BuyPlatform:     buy.Platform,
		SellPlatform:    sell.Platform,
		BuyPrice:        buy.YesPrice,
		SellPrice:       sell.YesPrice,
		BuyVolume:       buy.Volume,
		SellVolume:      sell.Volume,
		EstimatedProfit: spread - feeCost,
		MatchScore:      pair.MatchScore,
		DetectedAt:      detectedAt,
	}

	// Prefer the earlier expiry of the two legs; the opportunity dies with it.
	opp.ExpiresAt = earlierExpiry(poly.ExpiresAt, kalshi.ExpiresAt)

	return opp, true
}

// MinSpread returns the configured spread floor.
func (r *Ranker) MinSpread() float64 { return r.minSpread }

func earlierExpiry(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.Before(*a) {
		return b
	}
	return a
}
