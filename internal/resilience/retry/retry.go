// Package retry re-runs failed remote calls with exponential backoff and jitter.
// Only transient failures are retried: network timeouts, dropped connections,
// 5xx, 408 and 429 responses. A server-supplied Retry-After hint is honoured
// up to the policy's MaxDelay.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// Config is a retry policy.
type Config struct {
	// Name identifies the remote dependency in logs.
	Name string

	// MaxAttempts counts the first call; 1 disables retrying.
	MaxAttempts int

	InitialDelay time.Duration
	MaxDelay     time.Duration

	// Multiplier grows the delay after every failed attempt.
	Multiplier float64

	// JitterFraction adds up to this fraction of the delay at random (0.0 to 1.0).
	JitterFraction float64
}

// DefaultConfig returns a general purpose policy.
func DefaultConfig() Config {
	return Config{
		Name:           "default",
		MaxAttempts:    3,
		InitialDelay:   1 * time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// ModelServerConfig is used for the model-serving sidecar. Generation is
// expensive and already bounded by the inference timeout, so it gets one extra attempt.
func ModelServerConfig() Config {
	return Config{
		Name:           "model-server",
		MaxAttempts:    2,
		InitialDelay:   1 * time.Second,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// AIAPIConfig is used for hosted inference APIs (Hugging Face, Claude, OpenAI).
// The longer ceiling leaves room for a cold model to load.
func AIAPIConfig() Config {
	return Config{
		Name:           "ai-api",
		MaxAttempts:    3,
		InitialDelay:   2 * time.Second,
		MaxDelay:       20 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// ArticleFetchConfig is used for downloading articles. A caller is waiting
// on the result, so delays stay short.
func ArticleFetchConfig() Config {
	return Config{
		Name:           "article-fetch",
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// WithBackoff calls fn until it succeeds, returns a non-retryable error, or
// cfg.MaxAttempts is reached. Cancelling ctx aborts the wait between attempts.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	logger := slog.Default().With(slog.String("dependency", cfg.Name))

	var lastErr error
	delay := cfg.InitialDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				logger.InfoContext(ctx, "call succeeded after retry", slog.Int("attempt", attempt))
			}
			return nil
		}

		if !IsRetryable(lastErr) {
			if attempt > 1 {
				logger.WarnContext(ctx, "non-retryable error after retry",
					slog.Int("attempt", attempt),
					slog.Any("error", lastErr))
			}
			return lastErr
		}
		if attempt == attempts {
			break
		}

		wait := waitFor(lastErr, delay, cfg.MaxDelay)
		logger.WarnContext(ctx, "call failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", wait),
			slog.Any("error", lastErr))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}

		delay = nextDelay(delay, cfg)
	}

	return fmt.Errorf("max retry attempts (%d) exceeded: %w", attempts, lastErr)
}

// nextDelay grows d by the multiplier, caps it and adds jitter.
func nextDelay(d time.Duration, cfg Config) time.Duration {
	d = time.Duration(float64(d) * cfg.Multiplier)
	if cfg.MaxDelay > 0 && d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	return addJitter(d, cfg.JitterFraction)
}

// waitFor prefers the server's Retry-After hint over the computed delay.
func waitFor(err error, delay, maxDelay time.Duration) time.Duration {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > delay {
		delay = httpErr.RetryAfter
	}
	if maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode >= 500 && httpErr.StatusCode < 600:
			return true
		case httpErr.StatusCode == http.StatusTooManyRequests,
			httpErr.StatusCode == http.StatusRequestTimeout:
			return true
		}
	}

	return false
}

// HTTPError is a non-2xx response from a remote dependency.
type HTTPError struct {
	StatusCode int
	Message    string

	// RetryAfter is the server's requested wait, zero when absent.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// ParseRetryAfter reads a Retry-After header value given in seconds or as an
// HTTP date. Unparseable or past values yield zero.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

func addJitter(duration time.Duration, jitterFraction float64) time.Duration {
	if jitterFraction <= 0 {
		return duration
	}
	if jitterFraction > 1.0 {
		jitterFraction = 1.0
	}
	// #nosec G404 -- backoff jitter does not need cryptographic randomness.
	jitter := time.Duration(rand.Float64() * float64(duration) * jitterFraction)
	return duration + jitter
}
