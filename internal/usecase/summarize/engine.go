// Package summarize implements the text-to-bullet-summary pipeline.
// It combines primary text with optional notes, derives the output budget from the
// requested number of points, calls a pluggable summarization engine and renders the
// model output as a bulleted list.
package summarize

import (
	"context"
	"time"
)

// Engine produces a raw summary for a prompt.
//
// Implementations must:
//   - truncate the prompt to maxInputLength tokens without failing
//   - bound the generated output by maxOutputLength tokens
//   - strip special/control tokens from the returned text
//   - return an empty string, not an error, for an empty prompt
//
// Failures of the underlying model are returned as *entity.InferenceError.
type Engine interface {
	Summarize(ctx context.Context, prompt string, maxInputLength, maxOutputLength int) (string, error)
}

// HealthChecker is implemented by engines that can report on their backend.
type HealthChecker interface {
	Health(ctx context.Context) (*HealthStatus, error)
}

// HealthStatus represents the health of a summarization backend.
type HealthStatus struct {
	Healthy     bool
	Backend     string
	Latency     time.Duration
	Message     string
	CircuitOpen bool
}

// PDFExtractor converts a PDF document into plain text.
type PDFExtractor interface {
	// ExtractText concatenates the text of every page in document order.
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// URLExtractor downloads a web page and returns the text of its main article.
type URLExtractor interface {
	ExtractText(ctx context.Context, url string) (string, error)
}
