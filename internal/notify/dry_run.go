package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nvale/beacon/internal/lifecycle"
)

// DryRunNotifier logs transitions without sending notifications.
type DryRunNotifier struct {
	logger zerolog.Logger
	inner  Notifier
}

// NewDryRunNotifier returns a notifier that suppresses delivery and logs instead.
func NewDryRunNotifier(logger zerolog.Logger, inner Notifier) *DryRunNotifier {
	return &DryRunNotifier{logger: logger, inner: inner}
}

// Notify implements Notifier.
func (n *DryRunNotifier) Notify(_ context.Context, service string, change lifecycle.Change) error {
	n.logger.Info().
		Str("service", service).
		Str("from", string(change.From)).
		Str("to", string(change.To)).
		Str("reason", change.Reason).
		Msg("[DRY-RUN] Would notify")
	return nil
}
