// Package metrics exposes Prometheus instrumentation for the enrichment
// service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service counters with their own registry, so tests
// never collide on the global default.
type Metrics struct {
	registry *prometheus.Registry

	// RunsTotal counts enrichment runs by method and outcome.
	RunsTotal *prometheus.CounterVec
	// RunDuration tracks end-to-end run latency.
	RunDuration prometheus.Histogram
	// TermsProcessed counts scored terms across all runs.
	TermsProcessed prometheus.Counter
}

// New builds a self-contained metrics set.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "overrep_runs_total",
			Help: "Total enrichment runs by method and outcome",
		}, []string{"method", "status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "overrep_run_duration_seconds",
			Help:    "Enrichment run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		}),
		TermsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "overrep_terms_processed_total",
			Help: "Total library terms scored across all runs",
		}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
