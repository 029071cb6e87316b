// Package logging provides structured logging utilities using the standard library's log/slog package.
// It offers helper functions for creating loggers with consistent configuration and context propagation.
//
// Logging conventions:
//   - JSON output in services, text on stderr for the CLI
//   - LOG_LEVEL selects debug, info, warn or error
//   - Request ids from requestid are attached with WithRequestID
//
// Example usage:
//
//	logger := logging.NewLogger()
//	logging.WithRequestID(ctx, logger).Info("Summary generated",
//	    slog.Int("bullets", 5))
package logging
