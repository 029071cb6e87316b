package metrics

import (
	"errors"
	"strconv"
	"time"

	"smart-summarizer/internal/domain/entity"
)

// RecordHTTPRequest records an HTTP request with its metadata.
// route should be the mux pattern rather than the raw path to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, duration time.Duration, requestSize int64, responseSize int) {
	code := strconv.Itoa(status)
	HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
	HTTPRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, route).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, route).Observe(float64(responseSize))
	}
}

// RecordRateLimited records a request rejected by the rate limiter.
func RecordRateLimited() {
	HTTPRateLimitedTotal.Inc()
}

// RecordExtraction records one extraction attempt.
// Input rejected before any work counts as "invalid", other errors as "failure".
//
// Example:
//
//	start := time.Now()
//	text, err := extractor.ExtractText(ctx, url)
//	RecordExtraction("url", time.Since(start), len(text), err)
func RecordExtraction(source string, duration time.Duration, chars int, err error) {
	result := extractionResult(err)
	ExtractionAttemptsTotal.WithLabelValues(source, result).Inc()
	if result == "invalid" {
		return
	}
	ExtractionDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err == nil {
		ExtractedTextLength.WithLabelValues(source).Observe(float64(chars))
	}
}

func extractionResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, entity.ErrInvalidArgument):
		return "invalid"
	default:
		return "failure"
	}
}

// RecordCircuitState records a breaker moving into state.
// state follows gobreaker's numbering: 0 closed, 1 half-open, 2 open.
func RecordCircuitState(circuit string, state int, name string) {
	CircuitBreakerState.WithLabelValues(circuit).Set(float64(state))
	CircuitBreakerTransitionsTotal.WithLabelValues(circuit, name).Inc()
}
