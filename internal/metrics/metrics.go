// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service collectors on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	QueriesTotal    *prometheus.CounterVec
	QueryDuration   prometheus.Histogram
	FREDRequests    *prometheus.CounterVec
	AdvisorRequests *prometheus.CounterVec
	JobsActive      prometheus.Gauge
}

// New creates a Metrics with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fredagent",
			Name:      "queries_total",
			Help:      "Economic data queries processed, by outcome.",
		}, []string{"outcome"}),
		QueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fredagent",
			Name:      "query_duration_seconds",
			Help:      "End-to-end query pipeline duration.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		FREDRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fredagent",
			Name:      "fred_requests_total",
			Help:      "Requests to the FRED API, by endpoint and status.",
		}, []string{"endpoint", "status"}),
		AdvisorRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fredagent",
			Name:      "advisor_requests_total",
			Help:      "Requests to the advisor model, by status.",
		}, []string{"status"}),
		JobsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "fredagent",
			Name:      "jobs_active",
			Help:      "Jobs currently pending or running.",
		}),
	}
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveQuery records one finished query.
func (m *Metrics) ObserveQuery(outcome string, seconds float64) {
	m.QueriesTotal.WithLabelValues(outcome).Inc()
	m.QueryDuration.Observe(seconds)
}
