// Command api serves the summarization pipeline over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"smart-summarizer/internal/config"
	hhttp "smart-summarizer/internal/handler/http"
	"smart-summarizer/internal/infra/extractor"
	"smart-summarizer/internal/infra/summarizer"
	"smart-summarizer/internal/observability/logging"
	"smart-summarizer/internal/observability/tracing"
	"smart-summarizer/internal/usecase/summarize"
)

// @title           Smart Summarizer API
// @version         1.0
// @description     Turns pasted text, web articles and PDF documents into bullet-point summaries.
// @BasePath        /

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownTracing := initTracing(logger, cfg.Tracing)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("failed to flush traces", slog.Any("error", err))
		}
	}()

	engine, err := summarizer.New(cfg.ToSummarizer(), logger)
	if err != nil {
		logger.Error("failed to initialize summarization engine",
			slog.String("backend", cfg.Backend),
			slog.Any("error", err))
		os.Exit(1)
	}

	svc := summarize.NewService(engine,
		extractor.NewPDFExtractor(logger),
		extractor.NewArticleExtractor(cfg.ArticleConfig()),
		summarize.Options{MaxInputLength: cfg.MaxInputLength(), Logger: logger})

	handler := hhttp.NewRouter(hhttp.Deps{
		Service: svc,
		Engine:  engine,
		Backend: cfg.Backend,
		Version: cfg.Version,
		Logger:  logger,
		Config: hhttp.RouterConfig{
			MaxBodyBytes:   cfg.HTTP.MaxUploadBytes,
			RequestTimeout: cfg.HTTP.RequestTimeout,
			RateLimit:      cfg.HTTP.RateLimitRPS,
			RateBurst:      cfg.HTTP.RateLimitBurst,
		},
	})
	if cfg.HTTP.RateLimitRPS == 0 {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	runServer(logger, cfg, handler)
}

// initTracing installs the SDK tracer provider when tracing is enabled and
// returns its shutdown function. Spans are written to stderr.
func initTracing(logger *slog.Logger, cfg config.TracingConfig) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	if err != nil {
		logger.Error("failed to create trace exporter", slog.Any("error", err))
		return noop
	}
	shutdown, err := tracing.InitProvider(tracing.ProviderConfig{
		SampleRatio: cfg.SampleRatio,
		Processors:  []sdktrace.SpanProcessor{sdktrace.NewBatchSpanProcessor(exporter)},
	})
	if err != nil {
		logger.Error("failed to initialize tracing", slog.Any("error", err))
		return noop
	}
	logger.Info("tracing enabled", slog.Float64("sample_ratio", cfg.SampleRatio))
	return shutdown
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, cfg *config.Config, handler http.Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTP.Addr),
			slog.String("backend", cfg.Backend),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// Generations in flight get the shutdown window to finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	cancel()
	logger.Info("server stopped")
}
