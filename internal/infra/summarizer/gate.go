package summarizer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// inferenceGate admits a bounded number of generations at a time and bounds each
// admitted call, including its queueing time, with a timeout.
type inferenceGate struct {
	sem     *semaphore.Weighted
	timeout time.Duration
	metrics SummaryMetricsRecorder
}

func newInferenceGate(cfg EngineConfig, metrics SummaryMetricsRecorder) *inferenceGate {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &inferenceGate{
		sem:     semaphore.NewWeighted(cfg.Concurrency),
		timeout: cfg.Timeout,
		metrics: metrics,
	}
}

// run waits for a free slot and calls fn with a context bounded by the gate timeout.
func (g *inferenceGate) run(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	queued := time.Now()
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for inference slot: %w", err)
	}
	defer g.sem.Release(1)
	g.metrics.RecordQueueWait(time.Since(queued))

	return fn(ctx)
}
