// Package queue publishes detected arbitrage opportunities to Kafka so
// downstream consumers (execution engines, dashboards, backtest recorders)
// can react to each scan pass without polling the API.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mkozera/arbfinder/internal/domain"
)

// PublisherConfig holds the Kafka connection settings for the opportunity
// publisher.
type PublisherConfig struct {
	Brokers []string
	Topic   string
}

// Publisher writes every opportunity from a scan pass to a Kafka topic,
// keyed by match key so consumers with log compaction retain only the most
// recent quote for each cross-platform pair.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher creates a Publisher for the given brokers and topic.
func NewPublisher(cfg PublisherConfig, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		logger: logger.With(slog.String("component", "queue_publisher")),
	}
}

// Name identifies the sink in scheduler logs.
func (p *Publisher) Name() string { return "kafka" }

// Publish serializes each opportunity in the result and writes the batch in a
// single WriteMessages call. An empty pass publishes nothing.
func (p *Publisher) Publish(ctx context.Context, result domain.ScanResult) error {
	if len(result.Opportunities) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(result.Opportunities))
	for _, opp := range result.Opportunities {
		payload, err := json.Marshal(opp)
		if err != nil {
			return fmt.Errorf("queue: marshal opportunity %s: %w", opp.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(opp.MatchKey),
			Value: payload,
			Time:  result.ScannedAt,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("queue: write messages: %w", err)
	}

	p.logger.Debug("opportunities published",
		slog.Int("count", len(msgs)),
		slog.Uint64("generation", result.Generation),
	)
	return nil
}

// Close flushes and closes the underlying Kafka writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
