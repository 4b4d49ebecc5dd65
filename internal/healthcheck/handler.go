package healthcheck

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nvale/beacon/internal/lifecycle"
)

// Result is the per-request health evaluation returned to the orchestrator.
// It is never persisted.
type Result struct {
	Status    string    `json:"status"`
	State     string    `json:"state"`
	ChangedAt time.Time `json:"changed_at"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// Observer is notified of each probe outcome; used to feed metrics without
// the handler depending on the metrics package.
type Observer func(healthy bool)

// Handler serves GET /health. It reads only the lifecycle state: no I/O,
// no domain-logic calls, so liveness reporting stays responsive even when
// the domain service is wedged.
func Handler(reader lifecycle.Reader, observe Observer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := lifecycle.StateStarting
		var changedAt time.Time
		if reader != nil {
			state = reader.State()
			changedAt = reader.ChangedAt()
		}

		healthy := state.Healthy()
		if observe != nil {
			observe(healthy)
		}

		status := http.StatusServiceUnavailable
		result := Result{
			Status:    statusUnhealthy,
			State:     string(state),
			ChangedAt: changedAt,
			Timestamp: time.Now().UTC(),
		}
		if healthy {
			status = http.StatusOK
			result.Status = statusHealthy
		}
		writeJSON(w, status, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
