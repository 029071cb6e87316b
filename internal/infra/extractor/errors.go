// Package extractor converts PDF documents and web articles into plain text.
package extractor

import "errors"

// Sentinel errors for text extraction. The pipeline wraps every one of them in
// an entity.ExtractionError, so callers see both the source and the cause.
var (
	// ErrInvalidURL indicates that the URL is malformed, uses a disallowed scheme
	// or cannot be resolved.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrPrivateIP indicates that the URL resolves to a private, loopback or
	// link-local address.
	ErrPrivateIP = errors.New("URL resolves to private IP address")

	// ErrTooManyRedirects indicates that the redirect chain exceeded the configured limit.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates that the response body exceeded the configured size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates that the download did not finish in time.
	ErrTimeout = errors.New("request timeout")

	// ErrHTTPStatus indicates that the server answered with a non-200 status.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrContentNotFound indicates that no readable article text was found on the page.
	ErrContentNotFound = errors.New("no readable content found")

	// ErrInvalidPDF indicates that the document could not be parsed as a PDF.
	ErrInvalidPDF = errors.New("invalid PDF document")
)
