// Package observability groups the cross-cutting instrumentation of the
// summarizer.
//
// Subpackages:
//   - logging: slog loggers configured from LOG_LEVEL and LOG_FORMAT
//   - metrics: shared Prometheus collectors for HTTP and extraction
//   - tracing: OpenTelemetry tracer, provider setup and HTTP middleware
package observability
