// Package entity defines the transient values that flow through the summarization pipeline.
// Nothing here is persisted; every value lives for the duration of a single request.
package entity

// SourceKind tags where the primary text came from.
// The tag is informational only; downstream stages see plain text.
type SourceKind string

const (
	SourceText SourceKind = "text"
	SourcePDF  SourceKind = "pdf"
	SourceURL  SourceKind = "url"
)

// String returns the source kind as a plain string.
func (k SourceKind) String() string {
	return string(k)
}

const (
	// MinPoints is the smallest accepted number of summary points.
	MinPoints = 1

	// MaxPoints is the largest accepted number of summary points.
	MaxPoints = 20

	// DefaultPoints is used when the caller does not say how many points it wants.
	DefaultPoints = 5

	// TokensPerPoint converts a point count into an output token budget.
	TokensPerPoint = 40

	// DefaultMaxInputTokens is the tokenizer-level truncation length of the prompt.
	DefaultMaxInputTokens = 8192

	// MinOutputTokens is the fixed lower bound of generated summaries.
	MinOutputTokens = 30

	// NotesHeading introduces supplementary notes inside the combined prompt.
	NotesHeading = "Additional context:"

	// PreviewLength is the number of characters shown when previewing extracted PDF text.
	PreviewLength = 3000
)

// PointCount is the requested number of summary points.
type PointCount int

// Clamp returns the point count moved to the nearest bound of [MinPoints, MaxPoints].
func (p PointCount) Clamp() PointCount {
	if p < MinPoints {
		return MinPoints
	}
	if p > MaxPoints {
		return MaxPoints
	}
	return p
}

// InRange reports whether the point count already lies within [MinPoints, MaxPoints].
func (p PointCount) InRange() bool {
	return p >= MinPoints && p <= MaxPoints
}

// MaxOutputLength returns the output token budget derived from the point count.
func (p PointCount) MaxOutputLength() int {
	return int(p) * TokensPerPoint
}

// Summary is the result of one pipeline run.
type Summary struct {
	// Bullets is the formatted list, one "- " prefixed sentence per line.
	Bullets string

	// Sentences holds the trimmed, non-empty sentences in output order.
	Sentences []string

	// Source records where the primary text came from.
	Source SourceKind

	// InputLength is the rune count of the combined prompt.
	InputLength int

	// Points is the point count after clamping.
	Points PointCount

	// MaxOutputLength is the token budget handed to the engine.
	MaxOutputLength int
}
