package extractor_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-summarizer/internal/infra/extractor"
	"smart-summarizer/internal/resilience/retry"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Deep Sea Vents</title></head>
<body>
	<nav><a href="/">Home</a> <a href="/about">About</a></nav>
	<article>
		<h1>Deep Sea Vents</h1>
		<p>Hydrothermal vents release mineral rich water heated by magma far below the sea floor.</p>
		<p>Entire ecosystems grow around them, powered by chemosynthesis rather than sunlight.</p>
		<p>Researchers first observed these communities near the Galapagos Rift in 1977.</p>
	</article>
	<footer>Copyright 2024</footer>
</body>
</html>`

// newTestExtractor allows loopback addresses so httptest servers are reachable.
func newTestExtractor(mutate func(*extractor.ArticleConfig)) *extractor.ArticleExtractor {
	cfg := extractor.DefaultArticleConfig()
	cfg.DenyPrivateIPs = false
	if mutate != nil {
		mutate(&cfg)
	}
	return extractor.NewArticleExtractor(cfg)
}

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SmartSummarizerBot/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestArticleExtractor_Success(t *testing.T) {
	server := serveHTML(t, articleHTML)

	got, err := newTestExtractor(nil).ExtractText(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Contains(t, got, "Hydrothermal vents release mineral rich water")
	assert.Contains(t, got, "Galapagos Rift in 1977.")
	assert.NotContains(t, got, "  ", "whitespace runs are collapsed")
}

func TestArticleExtractor_NoReadableContent(t *testing.T) {
	server := serveHTML(t, `<!DOCTYPE html><html><head><title></title></head><body><script>var a = 1;</script></body></html>`)

	_, err := newTestExtractor(nil).ExtractText(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, extractor.ErrContentNotFound)
}

func TestArticleExtractor_InvalidURL(t *testing.T) {
	e := newTestExtractor(nil)

	tests := []struct {
		name string
		url  string
	}{
		{"malformed URL", "not-a-valid-url"},
		{"URL with spaces", "http://example .com/article"},
		{"empty URL", ""},
		{"file scheme", "file:///etc/passwd"},
		{"ftp scheme", "ftp://ftp.example.com/file.txt"},
		{"javascript scheme", "javascript:alert('xss')"},
		{"missing host", "http:///path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ExtractText(context.Background(), tt.url)
			assert.ErrorIs(t, err, extractor.ErrInvalidURL)
		})
	}
}

func TestArticleExtractor_PrivateIPsDenied(t *testing.T) {
	e := extractor.NewArticleExtractor(extractor.DefaultArticleConfig())

	for _, u := range []string{
		"http://127.0.0.1/article",
		"http://localhost:8080/",
		"http://10.0.0.1/",
		"http://192.168.1.1/",
		"http://172.16.0.1/",
		"http://169.254.169.254/latest/meta-data/",
		"http://[::1]/",
	} {
		t.Run(u, func(t *testing.T) {
			_, err := e.ExtractText(context.Background(), u)
			assert.ErrorIs(t, err, extractor.ErrPrivateIP)
		})
	}
}

func TestArticleExtractor_HTTPStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
	}{
		{"404 is not retried", http.StatusNotFound, 1},
		{"403 is not retried", http.StatusForbidden, 1},
		{"503 is retried", http.StatusServiceUnavailable, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := newTestExtractor(nil).ExtractText(context.Background(), server.URL)
			require.Error(t, err)
			assert.ErrorIs(t, err, extractor.ErrHTTPStatus)

			var httpErr *retry.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestArticleExtractor_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	got, err := newTestExtractor(nil).ExtractText(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, got, "chemosynthesis")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestArticleExtractor_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	e := newTestExtractor(func(c *extractor.ArticleConfig) { c.Timeout = 200 * time.Millisecond })

	start := time.Now()
	_, err := e.ExtractText(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, extractor.ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second, "timeouts are not retried")
}

func TestArticleExtractor_ContextCancelled(t *testing.T) {
	server := serveHTML(t, articleHTML)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestExtractor(nil).ExtractText(ctx, server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestArticleExtractor_BodyTooLarge(t *testing.T) {
	server := serveHTML(t, "<html><body><p>"+strings.Repeat("a", 4096)+"</p></body></html>")

	e := newTestExtractor(func(c *extractor.ArticleConfig) { c.MaxBodySize = 1024 })
	_, err := e.ExtractText(context.Background(), server.URL)
	assert.ErrorIs(t, err, extractor.ErrBodyTooLarge)
}

func TestArticleExtractor_Redirects(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/final", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	})
	mux.HandleFunc("/hop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})

	t.Run("followed", func(t *testing.T) {
		got, err := newTestExtractor(nil).ExtractText(context.Background(), server.URL+"/hop")
		require.NoError(t, err)
		assert.Contains(t, got, "Hydrothermal")
	})

	t.Run("too many", func(t *testing.T) {
		_, err := newTestExtractor(nil).ExtractText(context.Background(), server.URL+"/loop")
		assert.ErrorIs(t, err, extractor.ErrTooManyRedirects)
	})
}

func TestArticleExtractor_ParagraphFallback(t *testing.T) {
	// Too little text for a confident Readability candidate; the paragraph
	// scrape covers the page either way.
	html := `<html><head><title>Short Note</title></head><body>
		<div><p>Tiny.</p><p>The meeting moved to Thursday at ten in the large conference room.</p></div>
	</body></html>`
	server := serveHTML(t, html)

	got, err := newTestExtractor(nil).ExtractText(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, got, "The meeting moved to Thursday at ten in the large conference room.")
}
