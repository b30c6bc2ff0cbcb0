package archive

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
)

type fakeWriter struct {
	puts       []string
	multiparts []string
}

func (f *fakeWriter) Put(_ context.Context, path string, _ io.Reader, _ string) error {
	f.puts = append(f.puts, path)
	return nil
}

func (f *fakeWriter) PutMultipart(_ context.Context, path string, _ io.Reader, _ int64) error {
	f.multiparts = append(f.multiparts, path)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestArchiverPerPassKey(t *testing.T) {
	w := &fakeWriter{}
	a := NewArchiver(w, "scans", testLogger())

	result := domain.ScanResult{
		ScannedAt:  time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC),
		Generation: 42,
	}
	if err := a.Publish(context.Background(), result); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.puts) != 1 || w.puts[0] != "scans/2026/08/30/pass-000042.json" {
		t.Fatalf("puts = %v", w.puts)
	}
}

func TestArchiverDailyRollup(t *testing.T) {
	w := &fakeWriter{}
	a := NewArchiver(w, "scans", testLogger())
	ctx := context.Background()

	day1 := time.Date(2026, 8, 30, 23, 58, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 31, 0, 2, 0, 0, time.UTC)

	if err := a.Publish(ctx, domain.ScanResult{ScannedAt: day1, Generation: 1}); err != nil {
		t.Fatal(err)
	}
	if err := a.Publish(ctx, domain.ScanResult{ScannedAt: day1.Add(time.Minute), Generation: 2}); err != nil {
		t.Fatal(err)
	}
	if len(w.multiparts) != 0 {
		t.Fatalf("rollup flushed early: %v", w.multiparts)
	}

	// Crossing the UTC day boundary flushes the previous day's rollup.
	if err := a.Publish(ctx, domain.ScanResult{ScannedAt: day2, Generation: 3}); err != nil {
		t.Fatal(err)
	}
	if len(w.multiparts) != 1 || !strings.HasPrefix(w.multiparts[0], "scans/2026/08/30/") {
		t.Fatalf("multiparts = %v", w.multiparts)
	}

	// Close flushes the current day.
	if err := a.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if len(w.multiparts) != 2 || !strings.HasPrefix(w.multiparts[1], "scans/2026/08/31/") {
		t.Fatalf("multiparts after close = %v", w.multiparts)
	}
}
