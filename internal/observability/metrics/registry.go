package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, route, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds.
	// Summary requests wait on model inference, so buckets reach three minutes.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120, 180},
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 7), // up to 100MB
		},
		[]string{"method", "route"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 5),
		},
		[]string{"method", "route"},
	)

	// HTTPRequestsInFlight tracks requests currently being served
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// HTTPRateLimitedTotal counts requests rejected by the rate limiter
	HTTPRateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of HTTP requests rejected by the rate limiter",
		},
	)
)

// Extraction metrics track PDF and article text extraction
var (
	// ExtractionAttemptsTotal counts extraction attempts by source and result
	ExtractionAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_attempts_total",
			Help: "Total number of text extraction attempts",
		},
		[]string{"source", "result"}, // result: success, invalid, failure
	)

	// ExtractionDuration measures time to extract text
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extraction_duration_seconds",
			Help:    "Time taken to extract text from a PDF or web page",
			Buckets: []float64{0.05, 0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8, 25.6},
		},
		[]string{"source"},
	)

	// ExtractedTextLength measures extracted text length in characters
	ExtractedTextLength = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extracted_text_length_characters",
			Help:    "Length of extracted text in characters",
			Buckets: prometheus.ExponentialBuckets(100, 4, 9), // up to ~6.5M
		},
		[]string{"source"},
	)
)

// Resilience metrics track circuit breakers guarding remote dependencies
var (
	// CircuitBreakerState is 0 when closed, 1 when half-open and 2 when open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"circuit"},
	)

	// CircuitBreakerTransitionsTotal counts state changes by target state
	CircuitBreakerTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state changes",
		},
		[]string{"circuit", "to"},
	)
)
