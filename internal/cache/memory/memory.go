// Package memory provides an in-process implementation of the result cache
// with the same get/set/TTL semantics as the Redis-backed one, so the scanner
// can run without any storage backend (tests, single-shot scans).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
)

// ResultCache is an in-memory domain.ResultCache with lazy TTL eviction.
type ResultCache struct {
	mu        sync.RWMutex
	result    domain.ScanResult
	expiresAt time.Time
	set       bool
	now       func() time.Time
}

// NewResultCache creates an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{now: time.Now}
}

// NewResultCacheWithClock creates a cache with an injected clock for
// deterministic expiry tests.
func NewResultCacheWithClock(now func() time.Time) *ResultCache {
	return &ResultCache{now: now}
}

// Set stores the result. A non-positive ttl means no expiry.
func (c *ResultCache) Set(_ context.Context, result domain.ScanResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = result
	c.set = true
	if ttl > 0 {
		c.expiresAt = c.now().Add(ttl)
	} else {
		c.expiresAt = time.Time{}
	}
	return nil
}

// Get returns the cached result, or domain.ErrNotFound when the cache is
// empty or the entry has expired.
func (c *ResultCache) Get(_ context.Context) (domain.ScanResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.set {
		return domain.ScanResult{}, domain.ErrNotFound
	}
	if !c.expiresAt.IsZero() && c.now().After(c.expiresAt) {
		return domain.ScanResult{}, domain.ErrNotFound
	}
	return c.result, nil
}

// Invalidate drops the cached entry.
func (c *ResultCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set = false
	c.result = domain.ScanResult{}
	c.expiresAt = time.Time{}
	return nil
}

// Compile-time interface check.
var _ domain.ResultCache = (*ResultCache)(nil)
