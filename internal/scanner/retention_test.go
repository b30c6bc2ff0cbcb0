package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
)

type fakeOpportunityStore struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (f *fakeOpportunityStore) InsertBatch(ctx context.Context, opps []domain.ArbOpportunity) error {
	return nil
}

func (f *fakeOpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.ArbOpportunity, error) {
	return nil, nil
}

func (f *fakeOpportunityStore) ListByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.ArbOpportunity, error) {
	return nil, nil
}

func (f *fakeOpportunityStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

func (f *fakeOpportunityStore) sweeps() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestRetentionSweepsImmediatelyWithCutoff(t *testing.T) {
	store := &fakeOpportunityStore{}
	ret := NewRetention(store, 24*time.Hour, time.Hour, testLogger())
	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ret.now = func() time.Time { return fixed }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ret.Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return store.sweeps() >= 1 })
	cancel()
	<-done

	store.mu.Lock()
	got := store.cutoffs[0]
	store.mu.Unlock()
	want := fixed.Add(-24 * time.Hour)
	if !got.Equal(want) {
		t.Errorf("cutoff = %v, want %v", got, want)
	}
}

func TestRetentionSurvivesStoreErrors(t *testing.T) {
	store := &fakeOpportunityStore{err: errors.New("connection reset")}
	ret := NewRetention(store, 24*time.Hour, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ret.Run(ctx)
		close(done)
	}()

	// The loop keeps sweeping past failures.
	waitFor(t, func() bool { return store.sweeps() >= 2 })
	cancel()
	<-done
}
