package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nvale/beacon/internal/lifecycle"
)

func TestMetricsUpdates(t *testing.T) {
	m := New()

	m.ObserveProbe(true)
	m.ObserveProbe(true)
	m.ObserveProbe(false)
	m.ObserveTransition(lifecycle.Change{From: lifecycle.StateStarting, To: lifecycle.StateReady})
	m.ObserveTransition(lifecycle.Change{From: lifecycle.StateReady, To: lifecycle.StateDegraded})
	m.ObserveLivenessPoll(50 * time.Millisecond)
	m.IncNotifyDeliveryErrors()

	if got := testutil.ToFloat64(m.healthProbesTotal.WithLabelValues("healthy")); got != 2 {
		t.Fatalf("expected healthy probes 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.healthProbesTotal.WithLabelValues("unhealthy")); got != 1 {
		t.Fatalf("expected unhealthy probes 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.stateTransitionsTotal.WithLabelValues("starting", "ready")); got != 1 {
		t.Fatalf("expected starting->ready transitions 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.serviceStateGauge); got != stateValues[lifecycle.StateDegraded] {
		t.Fatalf("expected state gauge %v, got %v", stateValues[lifecycle.StateDegraded], got)
	}
	if got := testutil.ToFloat64(m.notifyDeliveryErrorsTotal); got != 1 {
		t.Fatalf("expected notify errors 1, got %v", got)
	}
	if count := testutil.CollectAndCount(m.livenessPollDuration); count == 0 {
		t.Fatalf("expected liveness poll histogram to be collected")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	m.ObserveProbe(true)
	m.ObserveTransition(lifecycle.Change{})
	m.ObserveLivenessPoll(time.Second)
	m.IncNotifyDeliveryErrors()
	if m.Handler() == nil {
		t.Fatalf("expected fallback handler for nil metrics")
	}
}
