package lifecycle

// State is the process-wide lifecycle state consulted by health reporting.
type State string

const (
	StateStarting     State = "starting"
	StateReady        State = "ready"
	StateDegraded     State = "degraded"
	StateShuttingDown State = "shutting_down"
)

// Healthy reports whether the state maps to a healthy liveness response.
// Only Ready is healthy; Starting signals "do not route traffic yet",
// Degraded and ShuttingDown signal the orchestrator to restart or back off.
func (s State) Healthy() bool {
	return s == StateReady
}

// validTransitions encodes the lifecycle state machine. Degraded never
// returns to Ready: a degraded service is unrecoverable and waits for the
// orchestrator to restart the process.
var validTransitions = map[State][]State{
	StateStarting: {StateReady, StateShuttingDown},
	StateReady:    {StateDegraded, StateShuttingDown},
	StateDegraded: {StateShuttingDown},
}

// CanTransition reports whether moving from one state to another is allowed.
func CanTransition(from, to State) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
