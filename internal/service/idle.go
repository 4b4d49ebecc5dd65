package service

import "context"

// Idle is a trivial Service that does nothing: it initializes instantly,
// blocks until canceled, and always reports healthy. It keeps the shipped
// binary runnable; real deployments swap in their own Service.
type Idle struct{}

// NewIdle constructs an Idle service.
func NewIdle() *Idle {
	return &Idle{}
}

// Init implements Service.
func (i *Idle) Init(_ context.Context) error {
	return nil
}

// Run implements Service.
func (i *Idle) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Liveness implements Service.
func (i *Idle) Liveness() Liveness {
	return LivenessHealthy
}
