// Package requestid carries a per-request correlation id through contexts.
// Every layer reads it from here; the HTTP middleware that accepts or
// generates it lives in the handler package.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// Key is the context key for storing request IDs.
	Key contextKey = "request_id"

	// Header is the HTTP header that carries request IDs in and out.
	Header = "X-Request-ID"

	// maxLength bounds client-supplied ids; longer values are replaced.
	maxLength = 128
)

// New returns a fresh random id (UUID v4).
func New() string {
	return uuid.New().String()
}

// FromContext retrieves the request ID from the context.
// Returns an empty string if no request ID is found.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(Key).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, Key, id)
}

// Ensure returns ctx unchanged when it already carries an id, otherwise a
// child context with a new one. CLI runs and tests get ids this way.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return WithRequestID(ctx, id), id
}

// Valid reports whether a client-supplied id is safe to echo into headers and logs.
func Valid(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}
