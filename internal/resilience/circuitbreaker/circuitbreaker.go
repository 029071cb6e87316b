// Package circuitbreaker guards calls to remote dependencies (the model
// server, hosted inference APIs, article downloads) with sony/gobreaker.
// Open circuits reject calls immediately with gobreaker.ErrOpenState.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"smart-summarizer/internal/observability/metrics"
	"smart-summarizer/internal/resilience/retry"
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name labels logs and the circuit_breaker_state metric.
	Name string

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts periodically. Zero never clears.
	Interval time.Duration

	// Timeout is how long the circuit stays open before going half-open.
	Timeout time.Duration

	// FailureThreshold is the failure ratio that trips the circuit, e.g. 0.6.
	FailureThreshold float64

	// MinRequests is the number of calls needed before the ratio is considered.
	// The same number of consecutive failures trips the circuit on its own.
	MinRequests uint32

	// Ignore reports errors that say nothing about the dependency's health,
	// such as rejected input. They are returned but count as successes.
	Ignore func(error) bool
}

// DefaultConfig returns a general purpose configuration named name.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// ClientError reports 4xx responses other than 408 and 429. They reject the
// request itself, not the dependency.
func ClientError(err error) bool {
	var httpErr *retry.HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	switch httpErr.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return httpErr.StatusCode >= 400 && httpErr.StatusCode < 500
}

// ModelServerConfig is used for the model-serving sidecar.
// Generation is slow, so a short open period would only hammer a busy accelerator.
func ModelServerConfig() Config {
	cfg := DefaultConfig("model-server")
	cfg.Ignore = ClientError
	cfg.MaxRequests = 1
	cfg.Interval = 60 * time.Second
	cfg.Timeout = 30 * time.Second
	cfg.FailureThreshold = 0.5
	cfg.MinRequests = 3
	return cfg
}

// HuggingFaceConfig is used for the Hugging Face Inference API.
func HuggingFaceConfig() Config {
	cfg := DefaultConfig("huggingface-api")
	cfg.Ignore = ClientError
	return cfg
}

// ClaudeAPIConfig is used for the Anthropic Messages API.
func ClaudeAPIConfig() Config {
	return DefaultConfig("claude-api")
}

// OpenAIAPIConfig is used for the OpenAI Chat Completions API.
func OpenAIAPIConfig() Config {
	return DefaultConfig("openai-api")
}

// ArticleFetchConfig is used for downloading articles by URL.
// Each request targets an arbitrary host, so the breaker only trips on a
// broad outage such as lost egress. Callers set Ignore for page-level faults.
func ArticleFetchConfig() Config {
	cfg := DefaultConfig("article-fetch")
	cfg.MaxRequests = 5
	cfg.Interval = 60 * time.Second
	cfg.Timeout = 120 * time.Second
	cfg.FailureThreshold = 0.8
	cfg.MinRequests = 10
	return cfg
}

// CircuitBreaker wraps gobreaker.CircuitBreaker with logging and metrics.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a circuit breaker from cfg.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// A run of failures trips even when earlier successes, or
			// ignored errors, keep the ratio under the threshold.
			if counts.ConsecutiveFailures >= cfg.MinRequests {
				return true
			}
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.RecordCircuitState(name, int(to), to.String())
		},
	}
	if cfg.Ignore != nil {
		ignore := cfg.Ignore
		settings.IsSuccessful = func(err error) bool {
			return err == nil || ignore(err)
		}
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))
	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Execute runs fn through the circuit breaker.
// An open circuit rejects the call with gobreaker.ErrOpenState without invoking fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the name of the circuit breaker.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether calls are currently being rejected.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
