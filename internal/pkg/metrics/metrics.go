// Package metrics declares the Prometheus collectors exported by the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestEvents counts tracking events by type and outcome
	// (ok, invalid, failed, noop).
	IngestEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advent_ingest_events_total",
			Help: "Total number of tracking events received",
		},
		[]string{"type", "outcome"},
	)

	// RollupFailures counts page views whose rollup increment failed after
	// the raw view was persisted.
	RollupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advent_rollup_failures_total",
			Help: "Total number of failed daily rollup increments",
		},
	)

	// Draws counts winner draws by kind (door, landing) and outcome.
	Draws = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advent_draws_total",
			Help: "Total number of winner draw attempts",
		},
		[]string{"kind", "outcome"},
	)

	ReportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "advent_report_duration_seconds",
			Help:    "Time spent assembling analytics reports",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// ReportCache counts report cache lookups by result (hit, miss, error).
	ReportCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advent_report_cache_total",
			Help: "Report cache lookups",
		},
		[]string{"result"},
	)

	WorkerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advent_worker_runs_total",
			Help: "Background worker cycles by worker and outcome",
		},
		[]string{"worker", "outcome"},
	)
)
