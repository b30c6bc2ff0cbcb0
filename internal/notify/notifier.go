// Package notify pushes opportunity alerts to operator channels (Discord,
// Telegram). Alerts are gated by a minimum spread so operators only hear
// about opportunities worth acting on, not every one-cent wobble.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkozera/arbfinder/internal/domain"
)

// Sender is the interface each notification channel implements.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier fans an opportunity alert out to all registered senders. A failing
// sender is logged and does not block delivery to the rest.
type Notifier struct {
	senders   []Sender
	minSpread float64
	logger    *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders. Only
// opportunities with a spread of at least minSpread trigger an alert.
func NewNotifier(senders []Sender, minSpread float64, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders:   senders,
		minSpread: minSpread,
		logger:    logger.With(slog.String("component", "notifier")),
	}
}

// Name identifies the sink in scheduler logs.
func (n *Notifier) Name() string { return "notify" }

// Publish alerts on every opportunity in the result that clears the spread
// gate. Results are already sorted by spread, so the loop can stop at the
// first opportunity below the gate.
func (n *Notifier) Publish(ctx context.Context, result domain.ScanResult) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, opp := range result.Opportunities {
		if opp.SpreadPercent < n.minSpread {
			break
		}
		title := fmt.Sprintf("Arb: %.1f%% spread on %s", opp.SpreadPercent, opp.EventTitle)
		if err := n.dispatch(ctx, title, formatOpportunity(opp)); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.Warn("sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.Debug("alert sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

// formatOpportunity renders the buy/sell legs in a channel-agnostic plain
// text body; each sender applies its own markup to the title only.
func formatOpportunity(opp domain.ArbOpportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Buy %s YES @ %.1fc, sell %s YES @ %.1fc\n",
		opp.BuyPlatform, opp.BuyPrice, opp.SellPlatform, opp.SellPrice)
	fmt.Fprintf(&b, "Est. profit after fees: %.2f%%\n", opp.EstimatedProfit)
	fmt.Fprintf(&b, "Category: %s | Match score: %.0f", opp.Category, opp.MatchScore)
	if opp.ExpiresAt != nil {
		fmt.Fprintf(&b, " | Expires: %s", opp.ExpiresAt.Format("2006-01-02 15:04 MST"))
	}
	return b.String()
}
