package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for the summarization domain.
var (
	// ErrInvalidArgument indicates that caller input was rejected before any work was done.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrExtraction indicates that text could not be extracted from a PDF or a web page.
	ErrExtraction = errors.New("text extraction failed")

	// ErrNotPDF indicates an upload that does not start with the PDF header.
	ErrNotPDF = errors.New("file is not a PDF document")

	// ErrInference indicates that the summarization model call failed.
	ErrInference = errors.New("inference failed")
)

// ValidationError represents a validation error with detailed field information.
// It matches ErrInvalidArgument via errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is reports whether target is ErrInvalidArgument.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// ExtractionError carries the failure of a PDF or URL extractor together with its cause.
// The cause is surfaced verbatim to the caller.
type ExtractionError struct {
	Source SourceKind
	Err    error
}

// NewExtractionError wraps err as an extraction failure for the given source.
func NewExtractionError(source SourceKind, err error) *ExtractionError {
	return &ExtractionError{Source: source, Err: err}
}

// Error returns the extraction failure message including the underlying cause.
func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s extraction failed", e.Source)
	}
	return fmt.Sprintf("%s extraction failed: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExtraction.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

// InferenceError carries a failure of the summarization backend.
type InferenceError struct {
	Backend string
	Err     error
}

// NewInferenceError wraps err as an inference failure of the named backend.
func NewInferenceError(backend string, err error) *InferenceError {
	return &InferenceError{Backend: backend, Err: err}
}

// Error returns the inference failure message including the backend name.
func (e *InferenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("inference failed (%s)", e.Backend)
	}
	return fmt.Sprintf("inference failed (%s): %v", e.Backend, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InferenceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInference.
func (e *InferenceError) Is(target error) bool {
	return target == ErrInference
}
