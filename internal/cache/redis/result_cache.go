package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkozera/arbfinder/internal/domain"
)

const resultKey = "scan:latest"

// ResultCache implements domain.ResultCache using a single JSON-serialized
// key with Redis-native TTL eviction.
type ResultCache struct {
	rdb *redis.Client
}

// NewResultCache creates a ResultCache backed by the given Client.
func NewResultCache(c *Client) *ResultCache {
	return &ResultCache{rdb: c.Underlying()}
}

// Set stores the latest scan result with the given TTL.
func (rc *ResultCache) Set(ctx context.Context, result domain.ScanResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("redis: marshal scan result: %w", err)
	}
	if err := rc.rdb.Set(ctx, resultKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set scan result: %w", err)
	}
	return nil
}

// Get retrieves the latest scan result. It returns domain.ErrNotFound when no
// result is cached or the TTL has expired.
func (rc *ResultCache) Get(ctx context.Context) (domain.ScanResult, error) {
	data, err := rc.rdb.Get(ctx, resultKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ScanResult{}, domain.ErrNotFound
		}
		return domain.ScanResult{}, fmt.Errorf("redis: get scan result: %w", err)
	}

	var result domain.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.ScanResult{}, fmt.Errorf("redis: unmarshal scan result: %w", err)
	}
	return result, nil
}

// Invalidate removes the cached result.
func (rc *ResultCache) Invalidate(ctx context.Context) error {
	if err := rc.rdb.Del(ctx, resultKey).Err(); err != nil {
		return fmt.Errorf("redis: invalidate scan result: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.ResultCache = (*ResultCache)(nil)
