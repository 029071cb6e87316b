package extractor

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/sony/gobreaker"

	"smart-summarizer/internal/resilience/circuitbreaker"
	"smart-summarizer/internal/resilience/retry"
)

// ArticleExtractor downloads a web page and extracts the text of its main article
// using Mozilla's Readability algorithm (go-shiori/go-readability). Pages where
// Readability finds nothing fall back to a plain paragraph scrape with goquery.
//
// Features:
//   - SSRF prevention via URL validation, redirect checks and a guarded dialer
//   - Circuit breaker and retry for transient network failures
//   - Size limiting to prevent memory exhaustion
//   - Timeout protection against slow servers
//
// Thread safety: ArticleExtractor is safe for concurrent use.
type ArticleExtractor struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         ArticleConfig
}

// NewArticleExtractor creates an ArticleExtractor with the given configuration.
//
// Example:
//
//	extractor := NewArticleExtractor(DefaultArticleConfig())
//	text, err := extractor.ExtractText(ctx, "https://example.com/article")
func NewArticleExtractor(config ArticleConfig) *ArticleExtractor {
	cbConfig := circuitbreaker.ArticleFetchConfig()
	cbConfig.Ignore = pageFault
	e := &ArticleExtractor{
		circuitBreaker: circuitbreaker.New(cbConfig),
		retryConfig:    retry.ArticleFetchConfig(),
		config:         config,
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12, // Enforce TLS 1.2+
		},
	}
	if config.DenyPrivateIPs {
		transport.Proxy = nil
		transport.DialContext = guardedDialContext(config.Timeout)
	}

	e.client = &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= e.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.Context(), req.URL.String(), e.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
	return e
}

// ExtractText fetches urlStr and returns the readable article text, title first.
func (e *ArticleExtractor) ExtractText(ctx context.Context, urlStr string) (string, error) {
	if err := validateURL(ctx, urlStr, e.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	var page []byte
	var finalURL *url.URL
	retryErr := retry.WithBackoff(ctx, e.retryConfig, func() error {
		_, err := e.circuitBreaker.Execute(func() (interface{}, error) {
			body, u, err := e.download(ctx, urlStr)
			if err != nil {
				return nil, err
			}
			page, finalURL = body, u
			return nil, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("article fetch circuit breaker open, request rejected",
				slog.String("service", "article-fetch"),
				slog.String("state", e.circuitBreaker.State().String()))
			return fmt.Errorf("article fetching unavailable: %w", err)
		}
		return err
	})
	if retryErr != nil {
		return "", retryErr
	}

	return e.extract(urlStr, page, finalURL)
}

// pageFault reports failures caused by the submitted page rather than by the
// network path. They must not trip the breaker for everyone else.
func pageFault(err error) bool {
	return errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrPrivateIP) ||
		errors.Is(err, ErrTooManyRedirects) ||
		errors.Is(err, ErrBodyTooLarge) ||
		circuitbreaker.ClientError(err)
}

// download performs one HTTP GET and returns the size-limited body and the final URL.
func (e *ArticleExtractor) download(ctx context.Context, urlStr string) ([]byte, *url.URL, error) {
	reqCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", e.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, nil, fmt.Errorf("%w: request exceeded %v", ErrTimeout, e.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && (errors.Is(urlErr.Err, ErrTooManyRedirects) ||
			errors.Is(urlErr.Err, ErrPrivateIP) || errors.Is(urlErr.Err, ErrInvalidURL)) {
			return nil, nil, urlErr.Err
		}
		return nil, nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: %w", ErrHTTPStatus,
			&retry.HTTPError{
				StatusCode: resp.StatusCode,
				Message:    resp.Status,
				RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
			})
	}

	// Read one byte past the limit to detect oversized bodies without trusting Content-Length.
	body, err := io.ReadAll(io.LimitReader(resp.Body, e.config.MaxBodySize+1))
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("%w: reading body exceeded %v", ErrTimeout, e.config.Timeout)
		}
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > e.config.MaxBodySize {
		return nil, nil, fmt.Errorf("%w: response exceeds limit %d bytes", ErrBodyTooLarge, e.config.MaxBodySize)
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}
	return body, finalURL, nil
}

// extract turns downloaded HTML into article text.
func (e *ArticleExtractor) extract(urlStr string, page []byte, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(page), pageURL)
	if err == nil {
		if body := cleanText(article.TextContent); body != "" {
			return withTitle(cleanText(article.Title), body), nil
		}
	}

	slog.Debug("readability found no article text, falling back to paragraph scrape",
		slog.String("url", urlStr),
		slog.Any("readability_error", err))

	body, title, scrapeErr := scrapeParagraphs(page, e.config.MinFallbackParagraph)
	if scrapeErr != nil {
		return "", fmt.Errorf("%w: %v", ErrContentNotFound, scrapeErr)
	}
	if body == "" {
		return "", ErrContentNotFound
	}
	return withTitle(title, body), nil
}

// scrapeParagraphs collects the text of <p> elements at least minLen characters long.
// When no paragraph qualifies the visible body text is used instead.
func scrapeParagraphs(page []byte, minLen int) (body, title string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", "", err
	}

	doc.Find("script, style, noscript, nav, header, footer, aside, form").Remove()
	title = cleanText(doc.Find("title").First().Text())

	var paragraphs []string
	doc.Find("article p, main p, body p").Each(func(_ int, s *goquery.Selection) {
		p := cleanText(s.Text())
		if len([]rune(p)) >= minLen {
			paragraphs = append(paragraphs, p)
		}
	})
	paragraphs = dedupe(paragraphs)
	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n\n"), title, nil
	}

	return cleanText(doc.Find("body").Text()), title, nil
}

// withTitle puts title on its own line above body unless body already starts with it.
func withTitle(title, body string) string {
	if title == "" || strings.HasPrefix(body, title) {
		return body
	}
	return title + "\n\n" + body
}

// cleanText collapses runs of horizontal whitespace and drops blank lines.
func cleanText(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// dedupe drops repeated paragraphs, which nested selectors can match twice.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
