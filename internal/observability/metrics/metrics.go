// Package metrics exposes Prometheus metrics for job runs and an optional
// HTTP endpoint to scrape them (daemon mode).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supaops_job_runs_total",
			Help: "Total job executions by result",
		},
		[]string{"job", "result"}, // result: ok, failed, skipped
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "supaops_job_duration_seconds",
			Help:    "Job execution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.4m
		},
		[]string{"job"},
	)

	JobAttempts = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "supaops_job_attempts",
			Help:    "Attempts needed per job execution",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
		[]string{"job"},
	)
)

// RecordRun records one finished job execution.
func RecordRun(job, result string, duration time.Duration, attempts int) {
	JobRuns.WithLabelValues(job, result).Inc()
	if result != "skipped" {
		JobDuration.WithLabelValues(job).Observe(duration.Seconds())
		JobAttempts.WithLabelValues(job).Observe(float64(attempts))
	}
}
