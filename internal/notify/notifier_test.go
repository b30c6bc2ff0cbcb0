package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
)

type fakeSender struct {
	name   string
	err    error
	titles []string
}

func (f *fakeSender) Name() string { return f.name }

func (f *fakeSender) Send(_ context.Context, title, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.titles = append(f.titles, title)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func result(spreads ...float64) domain.ScanResult {
	opps := make([]domain.ArbOpportunity, 0, len(spreads))
	for _, s := range spreads {
		opps = append(opps, domain.ArbOpportunity{
			EventTitle:    "Fed cut rates March",
			SpreadPercent: s,
			BuyPlatform:   domain.PlatformPolymarket,
			SellPlatform:  domain.PlatformKalshi,
			DetectedAt:    time.Now().UTC(),
		})
	}
	return domain.ScanResult{Opportunities: opps}
}

func TestNotifierSpreadGate(t *testing.T) {
	sender := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{sender}, 5.0, testLogger())

	// Results arrive sorted by spread; only the two above the gate alert.
	if err := n.Publish(context.Background(), result(8, 5, 3, 1)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(sender.titles) != 2 {
		t.Fatalf("alerts = %d, want 2", len(sender.titles))
	}
}

func TestNotifierNoSendersIsNoop(t *testing.T) {
	n := NewNotifier(nil, 5.0, testLogger())
	if err := n.Publish(context.Background(), result(10)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestNotifierFailingSenderDoesNotBlockOthers(t *testing.T) {
	broken := &fakeSender{name: "broken", err: errors.New("webhook 500")}
	working := &fakeSender{name: "working"}
	n := NewNotifier([]Sender{broken, working}, 5.0, testLogger())

	err := n.Publish(context.Background(), result(10))
	if err == nil {
		t.Fatal("sender failure not surfaced")
	}
	if len(working.titles) != 1 {
		t.Errorf("working sender alerts = %d, want 1", len(working.titles))
	}
}
