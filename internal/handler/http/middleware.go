package http

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"smart-summarizer/internal/observability/requestid"
	"smart-summarizer/internal/handler/http/respond"
	"smart-summarizer/internal/observability/logging"
	"smart-summarizer/internal/observability/metrics"
)

// RequestID propagates the caller's X-Request-ID when it is well formed and
// generates one otherwise. The id is set on the response header and stored
// in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestid.Header)
		if !requestid.Valid(id) {
			id = requestid.New()
		}

		w.Header().Set(requestid.Header, id)
		next.ServeHTTP(w, r.WithContext(requestid.WithRequestID(r.Context(), id)))
	})
}

// Logging returns middleware that logs HTTP requests with structured logging.
// It also stores a request-scoped logger, tagged with the request id, in the
// context. respond.Failure and the health checks log through it via
// logging.ForRequest.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logging.WithRequestID(r.Context(), logger)
			r = r.WithContext(logging.WithLogger(r.Context(), reqLogger))

			wrapped := newRecorder(w)
			next.ServeHTTP(wrapped, r)

			traceID := trace.SpanFromContext(r.Context()).SpanContext().TraceID().String()
			duration := time.Since(start)

			level := slog.LevelInfo
			if wrapped.status >= 500 {
				level = slog.LevelError
			} else if wrapped.status >= 400 {
				level = slog.LevelWarn
			}
			reqLogger.LogAttrs(r.Context(), level, "request completed",
				slog.String("trace_id", traceID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.Int64("request_bytes", r.ContentLength),
				slog.Int("status", wrapped.status),
				slog.Int("bytes", wrapped.bytes),
				slog.Duration("duration", duration),
			)
		})
	}
}

// Recover returns middleware that catches panics and logs them with structured logging.
// It prevents the server from crashing and returns a 500 Internal Server Error response.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// Let net/http abort the connection as it would without us.
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				logger.Error("panic recovered",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				respond.SafeError(w, http.StatusInternalServerError, errors.New("internal error"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LimitRequestBody returns middleware that limits the size of request bodies to prevent DoS attacks.
// Reads past the limit fail with *http.MaxBytesError, which respond maps to 413.
func LimitRequestBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respond.Failure(w, r, &http.MaxBytesError{Limit: maxBytes})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit returns middleware that admits requests through a single token
// bucket shared by all clients. The summarizer serves one model at a time, so
// limiting the total rate protects the inference queue better than per-client
// buckets would. Rejected requests get 429 with a Retry-After hint.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := limiter.Reserve()
			if !res.OK() {
				reject(w, limiter, 1)
				return
			}
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				reject(w, limiter, delay.Seconds())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, limiter *rate.Limiter, retryAfter float64) {
	metrics.RecordRateLimited()
	w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter))))
	w.Header().Set("X-RateLimit-Limit", strconv.FormatFloat(float64(limiter.Limit()), 'f', -1, 64))
	respond.SafeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
}

// Chain applies middleware so that the first one listed is the outermost.
func Chain(h http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
