package domain

import (
	"context"
	"time"
)

// OpportunityStore persists scan output for the history view.
type OpportunityStore interface {
	InsertBatch(ctx context.Context, opps []ArbOpportunity) error
	ListRecent(ctx context.Context, limit int) ([]ArbOpportunity, error)
	ListByCategory(ctx context.Context, category Category, limit int) ([]ArbOpportunity, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
