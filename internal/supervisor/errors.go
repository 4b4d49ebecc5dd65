package supervisor

import (
	"fmt"
	"time"
)

// BindError means the listen port was unavailable. Fatal and never
// retried: an occupied port is a misconfiguration external to the process,
// and masking it with retries would hide it from the operator.
type BindError struct {
	Port int
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind port %d: %v", e.Port, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// StartupFault means the domain service failed to initialize. Fatal and
// never retried; the state never reaches Ready and the orchestrator's
// restart policy owns recovery.
type StartupFault struct {
	Err error
}

func (e *StartupFault) Error() string {
	return fmt.Sprintf("service initialization failed: %v", e.Err)
}

func (e *StartupFault) Unwrap() error {
	return e.Err
}

// RuntimeFault means the domain service hit an unrecoverable problem after
// startup. Absorbed into the Degraded state and surfaced only through the
// health endpoint, never returned to callers.
type RuntimeFault struct {
	Err error
}

func (e *RuntimeFault) Error() string {
	return fmt.Sprintf("service runtime fault: %v", e.Err)
}

func (e *RuntimeFault) Unwrap() error {
	return e.Err
}

// ShutdownTimeout means the grace period elapsed with requests still in
// flight. Logged and not escalated; the process exits regardless.
type ShutdownTimeout struct {
	Grace time.Duration
}

func (e *ShutdownTimeout) Error() string {
	return fmt.Sprintf("shutdown grace period %s elapsed with requests in flight", e.Grace)
}
