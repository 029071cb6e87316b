package summarize

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for pipeline monitoring
var (
	// pipelineRunsTotal counts pipeline runs by source and outcome.
	pipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_pipeline_runs_total",
			Help: "Total number of summarization pipeline runs",
		},
		[]string{"source", "status"}, // status: success|invalid|extraction_error|inference_error
	)

	// pipelineDuration tracks end-to-end pipeline latency including extraction.
	pipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summary_pipeline_duration_seconds",
			Help:    "End-to-end summarization pipeline duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"source"},
	)

	// pointsClampedTotal counts requests whose point count was moved into range.
	pointsClampedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summary_points_clamped_total",
			Help: "Total number of requests whose point count was clamped into [1, 20]",
		},
	)

	// bulletsPerSummary tracks how many bullets a summary ends up with.
	bulletsPerSummary = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summary_bullets_count",
			Help:    "Number of bullets per generated summary",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 20, 30},
		},
	)
)
