// Package metrics exposes Prometheus counters for block renders and graph
// provider requests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Render outcomes.
const (
	OutcomeRendered = "rendered"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
)

// Metrics holds the collectors registered on a private registry.
//
// Usage:
//
//	m := metrics.New()
//	m.ObserveRender("student", metrics.OutcomeRendered)
//	router.GET("/metrics", gin.WrapH(m.Handler()))
type Metrics struct {
	registry *prometheus.Registry

	// Renders counts block renders.
	// Labels: mode, outcome (rendered|empty|error)
	Renders *prometheus.CounterVec

	// GraphRequests counts calls to the analytics service.
	// Labels: kind, result (data|nodata|cached|error)
	GraphRequests *prometheus.CounterVec

	// GraphLatency measures analytics service latency in seconds.
	// Labels: kind
	GraphLatency *prometheus.HistogramVec

	// PreferenceWrites counts async preference updates.
	// Labels: name, status (success|rejected|error)
	PreferenceWrites *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Renders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ace_block_renders_total",
				Help: "Total number of block renders by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		GraphRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ace_graph_requests_total",
				Help: "Total number of graph provider requests by kind and result",
			},
			[]string{"kind", "result"},
		),
		GraphLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ace_graph_request_seconds",
				Help:    "Duration of graph provider requests in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"kind"},
		),
		PreferenceWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ace_preference_writes_total",
				Help: "Total number of async preference writes by name and status",
			},
			[]string{"name", "status"},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRender records one render. Safe on a nil receiver.
func (m *Metrics) ObserveRender(mode, outcome string) {
	if m == nil {
		return
	}
	m.Renders.WithLabelValues(mode, outcome).Inc()
}

// ObserveGraphRequest records one graph provider call. Safe on a nil receiver.
func (m *Metrics) ObserveGraphRequest(kind, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.GraphRequests.WithLabelValues(kind, result).Inc()
	if result != "cached" {
		m.GraphLatency.WithLabelValues(kind).Observe(duration.Seconds())
	}
}

// ObservePreferenceWrite records one async preference write. Safe on a nil receiver.
func (m *Metrics) ObservePreferenceWrite(name, status string) {
	if m == nil {
		return
	}
	m.PreferenceWrites.WithLabelValues(name, status).Inc()
}
