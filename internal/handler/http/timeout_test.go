package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-summarizer/internal/observability/requestid"
	"smart-summarizer/internal/handler/http/respond"
)

func serveTimeout(d time.Duration, h http.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/summaries/text", nil)
	rec := httptest.NewRecorder()
	Timeout(d)(h).ServeHTTP(rec, req)
	return rec
}

func TestTimeout_CompletesInTime(t *testing.T) {
	rec := serveTimeout(time.Second, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestTimeout_Expires(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/summaries/text", nil)
	req = req.WithContext(requestid.WithRequestID(req.Context(), "req-42"))
	rec := httptest.NewRecorder()

	cancelled := make(chan struct{})
	Timeout(50*time.Millisecond)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		close(cancelled)
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "request timeout", body.Error)
	assert.Equal(t, "req-42", body.RequestID)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("handler context was not cancelled")
	}
}

func TestTimeout_LateWritesAreDropped(t *testing.T) {
	wrote := make(chan error, 1)
	rec := serveTimeout(30*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		w.Header().Set("X-Late", "1")
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("too late"))
		wrote <- err
	})

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.ErrorIs(t, <-wrote, http.ErrHandlerTimeout)
	assert.NotContains(t, rec.Body.String(), "too late")
	assert.Empty(t, rec.Header().Get("X-Late"))
}

func TestTimeout_ZeroDuration(t *testing.T) {
	rec := serveTimeout(0, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestTimeout_ImplicitStatus(t *testing.T) {
	t.Run("write without header", func(t *testing.T) {
		rec := serveTimeout(time.Second, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("first "))
			_, _ = w.Write([]byte("second"))
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "first second", rec.Body.String())
	})

	t.Run("no write at all", func(t *testing.T) {
		rec := serveTimeout(time.Second, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("X-Empty", "yes")
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "yes", rec.Header().Get("X-Empty"))
		assert.Empty(t, rec.Body.String())
	})
}

func TestTimeout_SetsDeadline(t *testing.T) {
	start := time.Now()
	var deadline time.Time
	var ok bool
	serveTimeout(time.Second, func(_ http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	})

	require.True(t, ok)
	assert.WithinDuration(t, start.Add(time.Second), deadline, 100*time.Millisecond)
}
