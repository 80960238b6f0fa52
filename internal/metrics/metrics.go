// Package metrics exposes Prometheus collectors for the pipeline and the
// REST server. Collectors are registry-scoped so tests can use a private
// registry without double-registration panics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for one application instance
type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	RunDuration        prometheus.Histogram
	SituationsRetained prometheus.Gauge
	SituationsSkipped  prometheus.Gauge
	BridgesTotal       prometheus.Gauge
	StatusTotal        *prometheus.GaugeVec
	TransitionErrors   prometheus.Counter
}

// New creates and registers the brugwacht collectors on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brugwacht_runs_total",
			Help: "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "brugwacht_run_duration_seconds",
			Help:    "Duration of one pipeline run.",
			Buckets: prometheus.DefBuckets,
		}),
		SituationsRetained: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "brugwacht_situations_retained",
			Help: "Feed situations retained in the index in the last run.",
		}),
		SituationsSkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "brugwacht_situations_skipped",
			Help: "Feed situations pruned during indexing in the last run.",
		}),
		BridgesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "brugwacht_bridges_total",
			Help: "Bridges loaded from the registry in the last run.",
		}),
		StatusTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brugwacht_bridge_status",
			Help: "Bridges per derived status in the last run.",
		}, []string{"status"}),
		TransitionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "brugwacht_transition_errors_total",
			Help: "Failed transition-history writes.",
		}),
	}

	registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.SituationsRetained,
		m.SituationsSkipped,
		m.BridgesTotal,
		m.StatusTotal,
		m.TransitionErrors,
	)
	return m
}
