package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkozera/arbfinder/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a new OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const oppSelectCols = `id, match_key, event_title, category, spread_percent,
	buy_platform, sell_platform, buy_price, sell_price,
	buy_volume, sell_volume, estimated_profit, match_score,
	expires_at, detected_at`

// InsertBatch stores all opportunities from one scan pass in a single batch.
func (s *OpportunityStore) InsertBatch(ctx context.Context, opps []domain.ArbOpportunity) error {
	if len(opps) == 0 {
		return nil
	}

	const query = `
		INSERT INTO arb_opportunities (
			id, match_key, event_title, category, spread_percent,
			buy_platform, sell_platform, buy_price, sell_price,
			buy_volume, sell_volume, estimated_profit, match_score,
			expires_at, detected_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13,
			$14, $15
		) ON CONFLICT (id) DO NOTHING`

	batch := &pgx.Batch{}
	for _, o := range opps {
		batch.Queue(query,
			o.ID, o.MatchKey, o.EventTitle, string(o.Category), o.SpreadPercent,
			string(o.BuyPlatform), string(o.SellPlatform), o.BuyPrice, o.SellPrice,
			o.BuyVolume, o.SellVolume, o.EstimatedProfit, o.MatchScore,
			o.ExpiresAt, o.DetectedAt,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range opps {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("postgres: insert opportunities batch: %w", err)
		}
	}
	return nil
}

// ListRecent returns the most recent opportunities ordered by detection time.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.ArbOpportunity, error) {
	query := `SELECT ` + oppSelectCols + ` FROM arb_opportunities ORDER BY detected_at DESC, spread_percent DESC`
	args := []any{}

	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	return scanOpportunities(rows)
}

// ListByCategory returns recent opportunities filtered by category.
func (s *OpportunityStore) ListByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.ArbOpportunity, error) {
	query := `SELECT ` + oppSelectCols + `
		FROM arb_opportunities
		WHERE category = $1
		ORDER BY detected_at DESC, spread_percent DESC`
	args := []any{string(category)}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities by category: %w", err)
	}
	defer rows.Close()

	return scanOpportunities(rows)
}

// DeleteOlderThan removes history rows detected before cutoff and returns the
// number of rows deleted.
func (s *OpportunityStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM arb_opportunities WHERE detected_at < $1", cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete old opportunities: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanOpportunities(rows pgx.Rows) ([]domain.ArbOpportunity, error) {
	var opps []domain.ArbOpportunity
	for rows.Next() {
		var o domain.ArbOpportunity
		var category, buyPlatform, sellPlatform string

		if err := rows.Scan(
			&o.ID, &o.MatchKey, &o.EventTitle, &category, &o.SpreadPercent,
			&buyPlatform, &sellPlatform, &o.BuyPrice, &o.SellPrice,
			&o.BuyVolume, &o.SellVolume, &o.EstimatedProfit, &o.MatchScore,
			&o.ExpiresAt, &o.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		o.Category = domain.Category(category)
		o.BuyPlatform = domain.Platform(buyPlatform)
		o.SellPlatform = domain.Platform(sellPlatform)
		opps = append(opps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: opportunities rows: %w", err)
	}
	return opps, nil
}

// Compile-time interface check.
var _ domain.OpportunityStore = (*OpportunityStore)(nil)
