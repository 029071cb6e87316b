package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smart-summarizer/internal/observability/metrics"
	"smart-summarizer/internal/observability/tracing"
)

// Instrument wraps the handler of one route with request metrics and names the
// enclosing server span after the route. route is the mux pattern the handler
// is registered under; using it as the label keeps cardinality bounded.
func Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()
		tracing.SetRoute(r.Context(), route)

		rw := newRecorder(w)
		start := time.Now()
		next.ServeHTTP(rw, r)

		metrics.RecordHTTPRequest(r.Method, route, rw.status, time.Since(start), r.ContentLength, rw.bytes)
	})
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
