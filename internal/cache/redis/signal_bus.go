package redis

import (
	"context"
	"fmt"

	"github.com/mkozera/arbfinder/internal/domain"
)

// SignalBus implements domain.SignalBus over Redis pub/sub. The scanner
// publishes each result on it and the websocket hub fans it out to clients.
type SignalBus struct {
	client *Client
}

// NewSignalBus creates a SignalBus backed by the given Client.
func NewSignalBus(c *Client) *SignalBus {
	return &SignalBus{client: c}
}

// Publish sends payload on the given channel.
func (b *SignalBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.client.Underlying().Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}

// Subscribe returns a channel of raw payloads published on the given channel.
// The subscription is closed when ctx is cancelled.
func (b *SignalBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	sub := b.client.Underlying().Subscribe(ctx, channel)

	// Force the subscription to be established before returning.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis: subscribe %s: %w", channel, err)
	}

	out := make(chan []byte, 64)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Compile-time interface check.
var _ domain.SignalBus = (*SignalBus)(nil)
