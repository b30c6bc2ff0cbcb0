package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mkozera/arbfinder/internal/domain"
	"github.com/mkozera/arbfinder/internal/scanner"
	"github.com/mkozera/arbfinder/internal/server/ws"
)

// historySink persists each pass's opportunities to the opportunity store.
type historySink struct {
	store domain.OpportunityStore
}

func (s *historySink) Name() string { return "history" }

func (s *historySink) Publish(ctx context.Context, result domain.ScanResult) error {
	if len(result.Opportunities) == 0 {
		return nil
	}
	if err := s.store.InsertBatch(ctx, result.Opportunities); err != nil {
		return fmt.Errorf("history sink: %w", err)
	}
	return nil
}

// busSink publishes the full scan result to the signal bus channel the
// websocket hub listens on.
type busSink struct {
	bus domain.SignalBus
}

func (s *busSink) Name() string { return "signal_bus" }

func (s *busSink) Publish(ctx context.Context, result domain.ScanResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("bus sink: marshal result: %w", err)
	}
	if err := s.bus.Publish(ctx, ws.ResultsChannel, payload); err != nil {
		return fmt.Errorf("bus sink: %w", err)
	}
	return nil
}

// buildSinks assembles the result sinks for the enabled backends.
func buildSinks(deps *Dependencies) []scanner.ResultSink {
	var sinks []scanner.ResultSink
	if deps.OpportunityStore != nil {
		sinks = append(sinks, &historySink{store: deps.OpportunityStore})
	}
	if deps.SignalBus != nil {
		sinks = append(sinks, &busSink{bus: deps.SignalBus})
	}
	if deps.Publisher != nil {
		sinks = append(sinks, deps.Publisher)
	}
	if deps.Archiver != nil {
		sinks = append(sinks, deps.Archiver)
	}
	if deps.Notifier != nil {
		sinks = append(sinks, deps.Notifier)
	}
	return sinks
}
