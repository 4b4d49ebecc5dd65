package notify

import (
	"context"

	"github.com/nvale/beacon/internal/lifecycle"
)

// Notifier delivers lifecycle transition alerts to external systems.
type Notifier interface {
	Notify(ctx context.Context, service string, change lifecycle.Change) error
}
