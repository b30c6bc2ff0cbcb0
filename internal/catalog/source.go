package catalog

import (
	"context"
	"fmt"

	"github.com/mkozera/arbfinder/internal/domain"
	"github.com/mkozera/arbfinder/internal/platform/kalshi"
	"github.com/mkozera/arbfinder/internal/platform/polymarket"
)

// Source produces one platform's normalized catalog for a scan pass.
type Source interface {
	Platform() domain.Platform
	Snapshots(ctx context.Context) ([]domain.MarketSnapshot, NormalizeStats, error)
}

// PolymarketSource fetches and normalizes the Polymarket catalog.
type PolymarketSource struct {
	client     *polymarket.GammaClient
	normalizer *Normalizer
	pageSize   int
	maxPages   int
}

// NewPolymarketSource creates a Source backed by the Gamma API.
func NewPolymarketSource(client *polymarket.GammaClient, normalizer *Normalizer, pageSize, maxPages int) *PolymarketSource {
	return &PolymarketSource{client: client, normalizer: normalizer, pageSize: pageSize, maxPages: maxPages}
}

func (s *PolymarketSource) Platform() domain.Platform { return domain.PlatformPolymarket }

func (s *PolymarketSource) Snapshots(ctx context.Context) ([]domain.MarketSnapshot, NormalizeStats, error) {
	markets, err := s.client.ListAllMarkets(ctx, s.pageSize, s.maxPages)
	if err != nil {
		return nil, NormalizeStats{}, fmt.Errorf("%w: polymarket: %v", domain.ErrUpstreamFetch, err)
	}
	snaps, stats := s.normalizer.NormalizePolymarket(markets)
	return snaps, stats, nil
}

// KalshiSource fetches and normalizes the Kalshi catalog.
type KalshiSource struct {
	client     *kalshi.Client
	normalizer *Normalizer
	pageSize   int
	maxPages   int
}

// NewKalshiSource creates a Source backed by the Kalshi REST API.
func NewKalshiSource(client *kalshi.Client, normalizer *Normalizer, pageSize, maxPages int) *KalshiSource {
	return &KalshiSource{client: client, normalizer: normalizer, pageSize: pageSize, maxPages: maxPages}
}

func (s *KalshiSource) Platform() domain.Platform { return domain.PlatformKalshi }

func (s *KalshiSource) Snapshots(ctx context.Context) ([]domain.MarketSnapshot, NormalizeStats, error) {
	markets, err := s.client.ListAllMarkets(ctx, s.pageSize, s.maxPages)
	if err != nil {
		return nil, NormalizeStats{}, fmt.Errorf("%w: kalshi: %v", domain.ErrUpstreamFetch, err)
	}
	snaps, stats := s.normalizer.NormalizeKalshi(markets)
	return snaps, stats, nil
}

// Compile-time interface checks.
var (
	_ Source = (*PolymarketSource)(nil)
	_ Source = (*KalshiSource)(nil)
)
