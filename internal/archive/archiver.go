// Package archive persists scan results to object storage for offline
// analysis. Each pass is written as a standalone JSON object, and passes are
// additionally accumulated into a JSONL rollup uploaded once per UTC day.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mkozera/arbfinder/internal/domain"
)

// BlobWriter is the narrow upload surface the archiver needs. The S3 writer
// satisfies it; tests use an in-memory fake.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}

// Archiver uploads every scan result it receives. It is not safe for
// concurrent use; the scheduler publishes to sinks sequentially.
type Archiver struct {
	writer BlobWriter
	prefix string
	logger *slog.Logger

	rollupDay time.Time
	rollup    bytes.Buffer
}

// NewArchiver creates an Archiver writing under the given key prefix,
// e.g. "scans" producing keys like "scans/2026/08/30/pass-000042.json".
func NewArchiver(writer BlobWriter, prefix string, logger *slog.Logger) *Archiver {
	if prefix == "" {
		prefix = "scans"
	}
	return &Archiver{
		writer: writer,
		prefix: prefix,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// Name identifies the sink in scheduler logs.
func (a *Archiver) Name() string { return "archive" }

// Publish writes the pass as a JSON object and appends it to the current
// day's rollup buffer, flushing the previous day's rollup on day change.
func (a *Archiver) Publish(ctx context.Context, result domain.ScanResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("archive: marshal result: %w", err)
	}

	day := result.ScannedAt.UTC().Truncate(24 * time.Hour)
	if !a.rollupDay.IsZero() && !day.Equal(a.rollupDay) {
		if err := a.flushRollup(ctx); err != nil {
			a.logger.Warn("rollup flush failed", slog.String("error", err.Error()))
		}
	}
	a.rollupDay = day
	a.rollup.Write(payload)
	a.rollup.WriteByte('\n')

	key := fmt.Sprintf("%s/%s/pass-%06d.json",
		a.prefix, result.ScannedAt.UTC().Format("2006/01/02"), result.Generation)
	if err := a.writer.Put(ctx, key, bytes.NewReader(payload), "application/json"); err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	a.logger.Debug("pass archived",
		slog.String("key", key),
		slog.Int("opportunities", len(result.Opportunities)),
	)
	return nil
}

// Close flushes any pending rollup. Call during shutdown.
func (a *Archiver) Close(ctx context.Context) error {
	return a.flushRollup(ctx)
}

func (a *Archiver) flushRollup(ctx context.Context) error {
	if a.rollup.Len() == 0 {
		return nil
	}
	key := fmt.Sprintf("%s/%s/rollup.jsonl", a.prefix, a.rollupDay.Format("2006/01/02"))
	data := bytes.NewReader(a.rollup.Bytes())
	a.rollup.Reset()

	if err := a.writer.PutMultipart(ctx, key, data, 0); err != nil {
		return fmt.Errorf("archive: rollup %s: %w", key, err)
	}
	a.logger.Info("daily rollup uploaded", slog.String("key", key))
	return nil
}
