package healthcheck

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nvale/beacon/internal/lifecycle"
)

type fixedState struct {
	state     lifecycle.State
	changedAt time.Time
}

func (s fixedState) State() lifecycle.State {
	return s.state
}

func (s fixedState) ChangedAt() time.Time {
	return s.changedAt
}

func TestHandlerPerState(t *testing.T) {
	cases := []struct {
		state      lifecycle.State
		wantCode   int
		wantStatus string
	}{
		{lifecycle.StateStarting, http.StatusServiceUnavailable, statusUnhealthy},
		{lifecycle.StateReady, http.StatusOK, statusHealthy},
		{lifecycle.StateDegraded, http.StatusServiceUnavailable, statusUnhealthy},
		{lifecycle.StateShuttingDown, http.StatusServiceUnavailable, statusUnhealthy},
	}

	entered := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)

	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.state), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()

			Handler(fixedState{state: tc.state, changedAt: entered}, nil)(rec, req)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}

			var result Result
			if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if result.Status != tc.wantStatus {
				t.Fatalf("expected status %q, got %q", tc.wantStatus, result.Status)
			}
			if result.State != string(tc.state) {
				t.Fatalf("expected state %q, got %q", tc.state, result.State)
			}
			if !result.ChangedAt.Equal(entered) {
				t.Fatalf("expected changed_at %s, got %s", entered, result.ChangedAt)
			}
			if result.Timestamp.IsZero() {
				t.Fatalf("expected timestamp to be set")
			}
		})
	}
}

func TestHandlerIdempotent(t *testing.T) {
	handler := Handler(fixedState{state: lifecycle.StateReady}, nil)

	var codes []int
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes = append(codes, rec.Code)
	}

	for _, code := range codes {
		if code != http.StatusOK {
			t.Fatalf("expected identical 200 responses, got %v", codes)
		}
	}
}

func TestHandlerObserverSeesOutcome(t *testing.T) {
	var outcomes []bool
	observe := func(healthy bool) { outcomes = append(outcomes, healthy) }

	Handler(fixedState{state: lifecycle.StateReady}, observe)(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	Handler(fixedState{state: lifecycle.StateDegraded}, observe)(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if len(outcomes) != 2 || !outcomes[0] || outcomes[1] {
		t.Fatalf("unexpected observer outcomes: %v", outcomes)
	}
}

func TestHandlerNilReaderIsUnhealthy(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(nil, nil)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for nil reader, got %d", rec.Code)
	}
}
