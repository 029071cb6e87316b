package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"smart-summarizer/internal/observability/requestid"
)

// Format selects the handler used by New.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Options configures New.
type Options struct {
	Level  slog.Level
	Format Format
	Output io.Writer
}

// ParseLevel maps debug, info, warn and error (case-insensitive) to a slog level.
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// ParseFormat accepts json or text. An empty string means json.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format %q", s)
	}
}

// New creates a logger from opts. Output defaults to stdout.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{
		Level: opts.Level,
		// Add source code location when debugging
		AddSource: opts.Level <= slog.LevelDebug,
	}
	if opts.Format == FormatText {
		return slog.New(slog.NewTextHandler(out, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(out, handlerOpts))
}

// NewLogger creates a logger configured by LOG_LEVEL and LOG_FORMAT.
// Unrecognised values fall back to info and json.
func NewLogger() *slog.Logger {
	level, _ := ParseLevel(os.Getenv("LOG_LEVEL"))
	format, _ := ParseFormat(os.Getenv("LOG_FORMAT"))
	return New(Options{Level: level, Format: format})
}

// NewTextLogger creates a human-readable logger on stderr for the CLI,
// keeping stdout free for the summary itself.
func NewTextLogger(level slog.Level) *slog.Logger {
	return New(Options{Level: level, Format: FormatText, Output: os.Stderr})
}

// WithRequestID returns a new logger that includes the request ID from the context.
// This enables request tracing across log entries.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}

// FromContext retrieves the logger from the context, or returns the default logger if not found.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// ForRequest returns the request-scoped logger stored by the HTTP logging
// middleware. Without one it falls back to the default logger tagged with the
// context's request id.
func ForRequest(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return WithRequestID(ctx, slog.Default())
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"
