// Package service defines the capability contract between the supervisor
// and the opaque domain logic it hosts. The supervisor depends only on this
// contract, never on a concrete implementation.
package service

import "context"

// Liveness is the coarse signal a domain service reports about itself.
type Liveness string

const (
	// LivenessHealthy means the service considers itself able to do work.
	LivenessHealthy Liveness = "healthy"
	// LivenessDegraded means the service hit an unrecoverable internal
	// fault but is still running; the supervisor surfaces it through the
	// health endpoint so the orchestrator can restart the process.
	LivenessDegraded Liveness = "degraded"
)

// Service is the unit of domain work hosted by the supervisor.
type Service interface {
	// Init performs one-shot initialization. An error is a fatal startup
	// fault: the supervisor exits non-zero without retrying.
	Init(ctx context.Context) error

	// Run executes the service until ctx is canceled. Returning a non-nil
	// error before cancellation is a runtime fault: the supervisor marks
	// the process degraded but keeps it alive for the orchestrator.
	Run(ctx context.Context) error

	// Liveness reports the service's own view of its health. Called
	// periodically by the supervisor; must be cheap and non-blocking.
	Liveness() Liveness
}
