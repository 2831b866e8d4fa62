package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BatchRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotlist_batch_runs_total",
			Help: "Total number of batch recalculation runs by outcome",
		},
		[]string{"outcome"},
	)

	BatchJobErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hotlist_batch_job_errors_total",
			Help: "Total number of jobs that failed during batch recalculation",
		},
	)

	RecalcDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hotlist_recalc_duration_seconds",
			Help:    "Duration of a single entity recalculation in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entity"},
	)

	MatchWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotlist_match_writes_total",
			Help: "Total number of match rows written by recalculation, by action",
		},
		[]string{"action"},
	)

	StaleMarks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotlist_stale_marks_total",
			Help: "Total number of matches flagged stale, by reason",
		},
		[]string{"reason"},
	)

	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotlist_classifications_total",
			Help: "Total number of entity classifications by entity and category",
		},
		[]string{"entity", "category"},
	)
)
