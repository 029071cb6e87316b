package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"smart-summarizer/internal/observability/requestid"
	"smart-summarizer/internal/handler/http/respond"
)

// Timeout returns middleware that enforces request timeouts.
// If a request takes longer than the specified duration, it returns 504 Gateway Timeout.
// The context is canceled so a running generation stops waiting on the model.
//
// A mutex guards the response: only one of the handler or the timeout writes it.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()
			r = r.WithContext(ctx)

			done := make(chan struct{})
			tw := &timeoutWriter{ResponseWriter: w, header: w.Header().Clone()}

			go func() {
				defer close(done)
				next.ServeHTTP(tw, r)
			}()

			select {
			case <-done:
				tw.mu.Lock()
				defer tw.mu.Unlock()
				if !tw.written {
					// Handler returned without writing anything.
					tw.flushHeader(http.StatusOK)
				}
			case <-ctx.Done():
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.timedOut = true
				if !tw.written {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusGatewayTimeout)
					_ = json.NewEncoder(w).Encode(respond.ErrorBody{
						Error:     "request timeout",
						RequestID: requestid.FromContext(r.Context()),
					})
				}
			}
		})
	}
}

// timeoutWriter buffers header changes so the handler goroutine never touches
// the real header map after the timeout response has been sent.
type timeoutWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	header   http.Header
	timedOut bool
	written  bool
}

func (w *timeoutWriter) Header() http.Header {
	return w.header
}

func (w *timeoutWriter) WriteHeader(statusCode int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut || w.written {
		return
	}
	w.flushHeader(statusCode)
}

func (w *timeoutWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !w.written {
		w.flushHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

// flushHeader copies the buffered header and writes the status. Callers hold mu.
func (w *timeoutWriter) flushHeader(statusCode int) {
	dst := w.ResponseWriter.Header()
	for k, v := range w.header {
		dst[k] = v
	}
	w.written = true
	w.ResponseWriter.WriteHeader(statusCode)
}
