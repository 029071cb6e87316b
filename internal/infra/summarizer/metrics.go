package summarizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SummaryMetricsRecorder defines the interface for recording summarization metrics.
// Tests inject a fake recorder instead of Prometheus.
//
// Example usage:
//
//	func (e *Seq2Seq) Summarize(ctx context.Context, prompt string, maxIn, maxOut int) (string, error) {
//	    // ... generate ...
//	    e.metrics.RecordLength(len([]rune(summary)))
//	    e.metrics.RecordDuration(time.Since(start))
//	    return summary, nil
//	}
type SummaryMetricsRecorder interface {
	// RecordLength records the length of a generated summary in characters.
	RecordLength(length int)

	// RecordDuration records the time taken to generate a summary.
	RecordDuration(duration time.Duration)

	// RecordTruncated increments the counter of prompts cut at the input budget.
	RecordTruncated()

	// RecordFailure increments the inference failure counter of backend.
	RecordFailure(backend string)

	// RecordQueueWait records how long a request waited for the inference slot.
	RecordQueueWait(duration time.Duration)
}

// PrometheusSummaryMetrics implements SummaryMetricsRecorder using Prometheus metrics.
type PrometheusSummaryMetrics struct {
	lengthHistogram    prometheus.Histogram
	durationHistogram  prometheus.Histogram
	queueWaitHistogram prometheus.Histogram
	truncatedCounter   prometheus.Counter
	failureCounter     *prometheus.CounterVec
}

var (
	prometheusMetricsInstance *PrometheusSummaryMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateHistogram gets an existing histogram or creates a new one if it doesn't exist
func getOrCreateHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
		// If it's not an AlreadyRegisteredError, use promauto which handles this gracefully
		return promauto.NewHistogram(opts)
	}
	return h
}

// getOrCreateCounter gets an existing counter or creates a new one if it doesn't exist
func getOrCreateCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Counter)
		}
		return promauto.NewCounter(opts)
	}
	return c
}

// getOrCreateCounterVec gets an existing counter vector or creates a new one if it doesn't exist
func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

// NewPrometheusSummaryMetrics creates a new Prometheus-based metrics recorder.
// Uses singleton pattern to avoid duplicate metric registration in tests.
func NewPrometheusSummaryMetrics() *PrometheusSummaryMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusSummaryMetrics{
			lengthHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "summarizer_output_length_characters",
				Help:    "Distribution of generated summary lengths in characters (Unicode runes)",
				Buckets: []float64{50, 100, 200, 400, 800, 1600, 3200, 6400},
			}),
			durationHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "summarizer_generation_duration_seconds",
				Help:    "Time taken to generate a summary, excluding queueing",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}),
			queueWaitHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "summarizer_queue_wait_seconds",
				Help:    "Time spent waiting for the inference slot",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			}),
			truncatedCounter: getOrCreateCounter(prometheus.CounterOpts{
				Name: "summarizer_input_truncated_total",
				Help: "Total number of prompts truncated at the input token budget",
			}),
			failureCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "summarizer_inference_failures_total",
				Help: "Total number of failed inference calls by backend",
			}, []string{"backend"}),
		}
	})
	return prometheusMetricsInstance
}

// RecordLength implements SummaryMetricsRecorder.RecordLength
func (p *PrometheusSummaryMetrics) RecordLength(length int) {
	p.lengthHistogram.Observe(float64(length))
}

// RecordDuration implements SummaryMetricsRecorder.RecordDuration
func (p *PrometheusSummaryMetrics) RecordDuration(duration time.Duration) {
	p.durationHistogram.Observe(duration.Seconds())
}

// RecordTruncated implements SummaryMetricsRecorder.RecordTruncated
func (p *PrometheusSummaryMetrics) RecordTruncated() {
	p.truncatedCounter.Inc()
}

// RecordFailure implements SummaryMetricsRecorder.RecordFailure
func (p *PrometheusSummaryMetrics) RecordFailure(backend string) {
	p.failureCounter.WithLabelValues(backend).Inc()
}

// RecordQueueWait implements SummaryMetricsRecorder.RecordQueueWait
func (p *PrometheusSummaryMetrics) RecordQueueWait(duration time.Duration) {
	p.queueWaitHistogram.Observe(duration.Seconds())
}
