package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
)

// recordSink captures every published result.
type recordSink struct {
	mu      sync.Mutex
	results []domain.ScanResult
}

func (r *recordSink) Name() string { return "record" }

func (r *recordSink) Publish(_ context.Context, result domain.ScanResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return nil
}

func (r *recordSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func newSchedulerUnderTest(sink ResultSink) (*Scheduler, *fakeSource, *fakeSource) {
	poly := &fakeSource{platform: domain.PlatformPolymarket}
	kalshi := &fakeSource{platform: domain.PlatformKalshi}
	poly.set([]domain.MarketSnapshot{polySnap("fed-cut", "Fed cut rates March", 60)}, nil)
	kalshi.set([]domain.MarketSnapshot{kalshiSnap("FED-26MAR", "Fed cut rates March", 67)}, nil)

	s := newTestScanner(poly, kalshi, nil)
	return NewScheduler(s, time.Hour, []ResultSink{sink}, testLogger()), poly, kalshi
}

func TestSchedulerRunsImmediateFirstPass(t *testing.T) {
	sink := &recordSink{}
	sched, _, _ := newSchedulerUnderTest(sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	waitFor(t, func() bool { return sink.count() == 1 })

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.results[0].Opportunities) != 1 {
		t.Errorf("published opportunities = %d, want 1", len(sink.results[0].Opportunities))
	}
}

func TestSchedulerTrigger(t *testing.T) {
	sink := &recordSink{}
	sched, _, kalshi := newSchedulerUnderTest(sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	waitFor(t, func() bool { return sink.count() == 1 })

	if err := sched.Trigger(ctx); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	waitFor(t, func() bool { return sink.count() == 2 })

	// A triggered pass that fails upstream reports the error to the caller
	// and publishes nothing.
	kalshi.set(nil, errors.New("502"))
	if err := sched.Trigger(ctx); !errors.Is(err, domain.ErrUpstreamFetch) {
		t.Fatalf("Trigger err = %v, want ErrUpstreamFetch", err)
	}
	if sink.count() != 2 {
		t.Errorf("failed pass published to sinks")
	}
}

func TestSchedulerTriggerAfterCancel(t *testing.T) {
	sink := &recordSink{}
	sched, _, _ := newSchedulerUnderTest(sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sched.Trigger(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Trigger on cancelled ctx = %v, want context.Canceled", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition not reached in time")
		case <-time.After(time.Millisecond):
		}
	}
}
