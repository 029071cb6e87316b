package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader carries the trace id back to the client.
const TraceIDHeader = "X-Trace-Id"

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware starts a server span per request, continuing any W3C trace
// context sent by the caller. The span is renamed after the matched route
// when the mux sits directly below it; deeper handlers use SetRoute.
//
// Example usage:
//
//	handler := tracing.Middleware(mux)
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		if sc := span.SpanContext(); sc.HasTraceID() {
			w.Header().Set(TraceIDHeader, sc.TraceID().String())
		}

		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		r = r.WithContext(ctx)
		next.ServeHTTP(rw, r)

		// r.Pattern is filled in by ServeMux when it receives this very request.
		if r.Pattern != "" {
			SetRoute(ctx, r.Pattern)
		}
		span.SetAttributes(
			attribute.Int("http.status_code", rw.statusCode),
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
			attribute.Int64("http.request_content_length", r.ContentLength),
		)
		if rw.statusCode >= 500 {
			span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
		}
	})
}

// SetRoute names the server span in ctx after a mux route pattern, so summary
// requests group by endpoint rather than by raw path.
func SetRoute(ctx context.Context, pattern string) {
	span := trace.SpanFromContext(ctx)
	span.SetName(pattern)
	span.SetAttributes(attribute.String("http.route", pattern))
}
