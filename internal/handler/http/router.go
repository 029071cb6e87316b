package http

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"smart-summarizer/internal/handler/http/summary"
	"smart-summarizer/internal/observability/tracing"
	"smart-summarizer/internal/usecase/summarize"
)

// RouterConfig holds the HTTP limits applied by NewRouter.
type RouterConfig struct {
	// MaxBodyBytes bounds every request body, PDF uploads included.
	MaxBodyBytes int64

	// RequestTimeout bounds a whole request, extraction and generation included.
	RequestTimeout time.Duration

	// RateLimit and RateBurst configure the token bucket in front of the
	// summary routes. A non-positive RateLimit disables limiting.
	RateLimit float64
	RateBurst int
}

// Deps are the collaborators the router serves.
type Deps struct {
	Service *summarize.Service
	Engine  summarize.Engine
	Backend string
	Version string
	Logger  *slog.Logger
	Config  RouterConfig
}

// NewRouter builds the application handler: summary routes, probes and
// metrics behind the shared middleware chain.
//
// Middleware order, outermost first: Recover → Request ID → Tracing →
// Logging → Input validation → Body limit → Timeout. The rate limiter and
// per-route metrics sit on the individual routes.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limit := func(h http.Handler) http.Handler { return h }
	if d.Config.RateLimit > 0 {
		burst := d.Config.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(d.Config.RateLimit), burst)
		limit = RateLimit(limiter)
	}

	mux := http.NewServeMux()
	summary.Register(mux, d.Service, d.Config.MaxBodyBytes, func(pattern string, h http.Handler) http.Handler {
		return Instrument(pattern, limit(h))
	})

	probe := func(pattern string, h http.Handler) {
		mux.Handle(pattern, Instrument(pattern, h))
	}
	probe("GET /health", &HealthHandler{Engine: d.Engine, Backend: d.Backend, Version: d.Version})
	probe("GET /ready", &ReadyHandler{Engine: d.Engine})
	probe("GET /live", LiveHandler{})
	mux.Handle("GET /metrics", MetricsHandler())

	mw := []func(http.Handler) http.Handler{
		Recover(logger),
		RequestID,
		tracing.Middleware,
		Logging(logger),
		InputValidation(),
	}
	if d.Config.MaxBodyBytes > 0 {
		mw = append(mw, LimitRequestBody(d.Config.MaxBodyBytes))
	}
	if d.Config.RequestTimeout > 0 {
		mw = append(mw, Timeout(d.Config.RequestTimeout))
	}
	return Chain(mux, mw...)
}
