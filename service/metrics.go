package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the parser service.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	OutcomesTotal   *prometheus.CounterVec
	StoreFailures   prometheus.Counter
	SeenKeys        prometheus.Gauge
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parser_requests_total",
			Help: "Total ParseBook calls by gRPC status code.",
		},
		[]string{"code"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parser_request_duration_seconds",
			Help:    "ParseBook handling latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parser_outcomes_total",
			Help: "ParseBook outcomes: accepted, duplicate or invalid.",
		},
		[]string{"outcome"},
	)
	storeFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parser_store_failures_total",
			Help: "Accepted records that could not be persisted.",
		},
	)
	seen := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "parser_seen_keys",
			Help: "Number of UPCs accepted since startup, including those loaded from the store.",
		},
	)

	registry.MustRegister(requests, duration, outcomes, storeFailures, seen)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: duration,
		OutcomesTotal:   outcomes,
		StoreFailures:   storeFailures,
		SeenKeys:        seen,
	}
}

// IncRequest increments the request counter for a status code label.
func (m *Metrics) IncRequest(code string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(code).Inc()
}

// ObserveDuration records a request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncOutcome increments the outcome counter.
func (m *Metrics) IncOutcome(outcome string) {
	if m == nil {
		return
	}
	m.OutcomesTotal.WithLabelValues(outcome).Inc()
}

// IncStoreFailure increments the persistence failure counter.
func (m *Metrics) IncStoreFailure() {
	if m == nil {
		return
	}
	m.StoreFailures.Inc()
}

// SetSeenKeys updates the seen-keys gauge.
func (m *Metrics) SetSeenKeys(n int) {
	if m == nil {
		return
	}
	m.SeenKeys.Set(float64(n))
}
