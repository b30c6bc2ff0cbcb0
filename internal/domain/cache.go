package domain

import (
	"context"
	"time"
)

// ResultCache stores the latest scan result with TTL-based eviction. Both the
// Redis-backed and in-memory implementations satisfy it, so the scanner never
// depends on a concrete storage backend.
type ResultCache interface {
	Set(ctx context.Context, result ScanResult, ttl time.Duration) error
	Get(ctx context.Context) (ScanResult, error)
	Invalidate(ctx context.Context) error
}

// SignalBus provides lightweight pub/sub between the scanner and the
// websocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// RateLimiter provides distributed rate limiting for the API surface.
type RateLimiter interface {
	// Allow reports whether a request for key is permitted under the given
	// limit and window, counting the request when it is.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
