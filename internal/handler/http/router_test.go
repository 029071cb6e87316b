package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-summarizer/internal/observability/requestid"
	"smart-summarizer/internal/observability/metrics"
	"smart-summarizer/internal/usecase/summarize"
)

type echoEngine struct{}

func (echoEngine) Summarize(_ context.Context, prompt string, _, _ int) (string, error) {
	return prompt, nil
}

// slowEngine blocks until its context ends.
type slowEngine struct{}

func (slowEngine) Summarize(ctx context.Context, _ string, _, _ int) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func newTestRouter(engine summarize.Engine, cfg RouterConfig) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(Deps{
		Service: summarize.NewService(engine, nil, nil, summarize.Options{Logger: logger}),
		Engine:  engine,
		Backend: "echo",
		Version: "test",
		Logger:  logger,
		Config:  cfg,
	})
}

func postText(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/summaries/text", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_SummarizeText(t *testing.T) {
	h := newTestRouter(echoEngine{}, RouterConfig{MaxBodyBytes: 1 << 20, RequestTimeout: 5 * time.Second})
	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "POST /summaries/text", "200")
	before := testutil.ToFloat64(counter)

	rec := postText(h, `{"text":"First point. Second point?","points":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "- First point.\n- Second point?", body["summary"])
	assert.EqualValues(t, 2, body["points"])

	id := rec.Header().Get(requestid.Header)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, body["request_id"], "response and header share the request id")
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRouter_HealthEndpoints(t *testing.T) {
	h := newTestRouter(echoEngine{}, RouterConfig{})

	for path, want := range map[string]int{
		"/health":  http.StatusOK,
		"/ready":   http.StatusOK,
		"/live":    http.StatusOK,
		"/metrics": http.StatusOK,
		"/nowhere": http.StatusNotFound,
	} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, want, rec.Code)
		})
	}
}

func TestRouter_MetricsExposition(t *testing.T) {
	h := newTestRouter(echoEngine{}, RouterConfig{})
	postText(h, `{"text":"Warm up."}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="POST",route="POST /summaries/text"`)
}

func TestRouter_RejectsWrongContentType(t *testing.T) {
	h := newTestRouter(echoEngine{}, RouterConfig{})

	req := httptest.NewRequest(http.MethodPost, "/summaries/text", strings.NewReader("hello"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_BodyLimit(t *testing.T) {
	h := newTestRouter(echoEngine{}, RouterConfig{MaxBodyBytes: 64})

	rec := postText(h, `{"text":"`+strings.Repeat("x", 128)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRouter_RateLimitAppliesToSummariesOnly(t *testing.T) {
	h := newTestRouter(echoEngine{}, RouterConfig{RateLimit: 0.01, RateBurst: 1})

	assert.Equal(t, http.StatusOK, postText(h, `{"text":"One."}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, postText(h, `{"text":"Two."}`).Code)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequestTimeout(t *testing.T) {
	h := newTestRouter(slowEngine{}, RouterConfig{RequestTimeout: 50 * time.Millisecond})

	rec := postText(h, `{"text":"Takes forever."}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}
