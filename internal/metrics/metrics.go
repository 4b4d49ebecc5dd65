package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nvale/beacon/internal/lifecycle"
)

// stateValues maps lifecycle states to gauge values so dashboards can plot
// the state as a single series.
var stateValues = map[lifecycle.State]float64{
	lifecycle.StateStarting:     0,
	lifecycle.StateReady:        1,
	lifecycle.StateDegraded:     2,
	lifecycle.StateShuttingDown: 3,
}

// Metrics wraps Prometheus collectors for beacon.
type Metrics struct {
	registry                  *prometheus.Registry
	healthProbesTotal         *prometheus.CounterVec
	stateTransitionsTotal     *prometheus.CounterVec
	serviceStateGauge         prometheus.Gauge
	livenessPollDuration      prometheus.Histogram
	startTimestampGauge       prometheus.Gauge
	notifyDeliveryErrorsTotal prometheus.Counter
}

// New initializes a Metrics registry with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		healthProbesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_health_probes_total",
			Help: "Total health probes answered, by probe outcome.",
		}, []string{"status"}),
		stateTransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_state_transitions_total",
			Help: "Total accepted lifecycle transitions by from/to state.",
		}, []string{"from", "to"}),
		serviceStateGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beacon_service_state",
			Help: "Current lifecycle state (0=starting 1=ready 2=degraded 3=shutting_down).",
		}),
		livenessPollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beacon_liveness_poll_duration_seconds",
			Help:    "Duration of domain-service liveness polls in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		startTimestampGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beacon_start_timestamp",
			Help: "Unix timestamp of process start.",
		}),
		notifyDeliveryErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beacon_notify_delivery_errors_total",
			Help: "Total lifecycle notification deliveries that failed after retries.",
		}),
	}

	registry.MustRegister(
		m.healthProbesTotal,
		m.stateTransitionsTotal,
		m.serviceStateGauge,
		m.livenessPollDuration,
		m.startTimestampGauge,
		m.notifyDeliveryErrorsTotal,
	)

	m.startTimestampGauge.Set(float64(time.Now().Unix()))

	return m
}

// Handler returns a Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveProbe records a health probe outcome.
func (m *Metrics) ObserveProbe(healthy bool) {
	if m == nil {
		return
	}
	status := "unhealthy"
	if healthy {
		status = "healthy"
	}
	m.healthProbesTotal.WithLabelValues(status).Inc()
}

// ObserveTransition records an accepted lifecycle transition.
func (m *Metrics) ObserveTransition(change lifecycle.Change) {
	if m == nil {
		return
	}
	m.stateTransitionsTotal.WithLabelValues(string(change.From), string(change.To)).Inc()
	if value, ok := stateValues[change.To]; ok {
		m.serviceStateGauge.Set(value)
	}
}

// ObserveLivenessPoll records the duration of a liveness poll.
func (m *Metrics) ObserveLivenessPoll(duration time.Duration) {
	if m == nil {
		return
	}
	m.livenessPollDuration.Observe(duration.Seconds())
}

// IncNotifyDeliveryErrors increments the notification failure counter.
func (m *Metrics) IncNotifyDeliveryErrors() {
	if m == nil {
		return
	}
	m.notifyDeliveryErrorsTotal.Inc()
}
