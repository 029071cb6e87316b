package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"smart-summarizer/internal/domain/entity"
	"smart-summarizer/internal/handler/http/respond"
	"smart-summarizer/internal/observability/logging"
	"smart-summarizer/internal/observability/metrics"
	"smart-summarizer/internal/observability/requestid"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"generated when absent", "", false},
		{"uuid kept", "6f1c2f5e-8a51-4c3e-9d87-2b1f0c7e4a10", true},
		{"trace style id kept", "req_42.worker:7", true},
		{"newline replaced", "abc\ninjected", false},
		{"spaces replaced", "a b c", false},
		{"overlong replaced", strings.Repeat("a", 129), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fromCtx string
			h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				fromCtx = requestid.FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.header != "" {
				req.Header.Set(requestid.Header, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(requestid.Header)
			assert.Equal(t, got, fromCtx)
			if tt.keep {
				assert.Equal(t, tt.header, got)
				return
			}
			_, err := uuid.Parse(got)
			assert.NoError(t, err, "generated id must be a uuid")
		})
	}
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name  string
		code  int
		level string
	}{
		{"success logs info", http.StatusOK, "INFO"},
		{"client error logs warn", http.StatusUnprocessableEntity, "WARN"},
		{"server error logs error", http.StatusBadGateway, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte("body"))
			}), RequestID, Logging(jsonLogger(&buf)))

			req := httptest.NewRequest(http.MethodPost, "/summaries/text", strings.NewReader("{}"))
			req.Header.Set(requestid.Header, "abc-123")
			h.ServeHTTP(httptest.NewRecorder(), req)

			entry := decodeLogLine(t, &buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "request completed", entry["msg"])
			assert.Equal(t, "abc-123", entry["request_id"])
			assert.Equal(t, "/summaries/text", entry["path"])
			assert.EqualValues(t, tt.code, entry["status"])
			assert.EqualValues(t, 4, entry["bytes"])
		})
	}
}

func TestLogging_StoresRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	h := Chain(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("inside handler")
	}), RequestID, Logging(jsonLogger(&buf)))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestid.Header, "handler-id")
	h.ServeHTTP(httptest.NewRecorder(), req)

	first := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Contains(t, first, `"msg":"inside handler"`)
	assert.Contains(t, first, `"request_id":"handler-id"`)
}

func TestLogging_FailureUsesRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Failure(w, r, entity.NewInferenceError("model-server", errors.New("device lost")))
	}), RequestID, Logging(jsonLogger(&buf)))

	req := httptest.NewRequest(http.MethodPost, "/summaries/text", strings.NewReader("{}"))
	req.Header.Set(requestid.Header, "failing-id")
	h.ServeHTTP(httptest.NewRecorder(), req)

	first := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Contains(t, first, `"msg":"request failed"`)
	assert.Contains(t, first, `"request_id":"failing-id"`)
	assert.Contains(t, first, "device lost")
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	h := Recover(jsonLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("model exploded")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/summaries/text", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error)
	assert.NotContains(t, rec.Body.String(), "model exploded")
	assert.Contains(t, buf.String(), "model exploded")
}

func TestRecover_AbortHandlerPropagates(t *testing.T) {
	h := Recover(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithError(t, http.ErrAbortHandler.Error(), func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLimitRequestBody(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			respond.Failure(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	h := LimitRequestBody(16)(echo)

	t.Run("within limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi"}`)))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("declared length over limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("streamed body over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestRateLimit(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0.5), 2)
	h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	before := testutil.ToFloat64(metrics.HTTPRateLimitedTotal)

	var codes []int
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		h.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/summaries/text", nil))
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "2", last.Header().Get("Retry-After"))
	assert.Equal(t, "0.5", last.Header().Get("X-RateLimit-Limit"))
	assert.Contains(t, last.Body.String(), "rate limit exceeded")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.HTTPRateLimitedTotal))
}

func TestRateLimit_RejectionDoesNotConsumeTokens(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(1), 1)
	h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	for i := 0; i < 5; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	}

	// Cancelled reservations return their token, so the bucket refills on schedule.
	assert.InDelta(t, 0, limiter.Tokens(), 0.1)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("outer"), mark("middle"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "middle", "inner", "handler"}, order)
}

func TestRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	w := newRecorder(rec)

	w.WriteHeader(http.StatusAccepted)
	w.WriteHeader(http.StatusTeapot)
	n, err := w.Write([]byte("hello"))

	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusAccepted, w.status)
	assert.Equal(t, 5, w.bytes)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Same(t, rec, w.Unwrap())
}
