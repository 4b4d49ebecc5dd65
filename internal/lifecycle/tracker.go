package lifecycle

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Change describes an accepted state transition.
type Change struct {
	From   State
	To     State
	Reason string
	At     time.Time
}

// Listener receives accepted transitions. Listeners run on the writer's
// goroutine after the tracker lock is released and must not block for long.
type Listener func(Change)

// Reader is the read-only view handed to health reporting. It never exposes
// mutation, which keeps the single-writer discipline visible in the types.
type Reader interface {
	State() State
	ChangedAt() time.Time
}

// Tracker holds the process lifecycle state. The Process Supervisor is the
// only writer; everything else reads through the Reader interface.
type Tracker struct {
	logger    zerolog.Logger
	mu        sync.RWMutex
	state     State
	changedAt time.Time
	listeners []Listener
}

// NewTracker constructs a Tracker in the Starting state.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		logger:    logger,
		state:     StateStarting,
		changedAt: time.Now().UTC(),
	}
}

// OnChange registers a transition listener. Must be called before the
// supervisor starts driving transitions; registration is not synchronized
// with delivery.
func (t *Tracker) OnChange(listener Listener) {
	if listener == nil {
		return
	}
	t.listeners = append(t.listeners, listener)
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	if t == nil {
		return StateStarting
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// ChangedAt returns when the current state was entered.
func (t *Tracker) ChangedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.changedAt
}

// Transition moves the tracker to a new state. Invalid transitions are
// rejected and logged; the state is left unchanged. Returns whether the
// transition was accepted.
func (t *Tracker) Transition(to State, reason string) bool {
	now := time.Now().UTC()

	t.mu.Lock()
	from := t.state
	if from == to {
		t.mu.Unlock()
		return false
	}
	if !CanTransition(from, to) {
		t.mu.Unlock()
		t.logger.Warn().
			Str("from", string(from)).
			Str("to", string(to)).
			Str("reason", reason).
			Msg("lifecycle transition rejected")
		return false
	}
	t.state = to
	t.changedAt = now
	t.mu.Unlock()

	event := t.logger.Info()
	if to == StateDegraded {
		event = t.logger.Warn()
	}
	event.
		Str("from", string(from)).
		Str("to", string(to)).
		Str("reason", reason).
		Msg("lifecycle transition")

	change := Change{From: from, To: to, Reason: reason, At: now}
	for _, listener := range t.listeners {
		listener(change)
	}
	return true
}
