package entity

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// pdfMagic is the header every PDF document starts with.
var pdfMagic = []byte("%PDF-")

// ValidateURL validates the format of an article URL.
// It checks that the URL is well-formed, uses HTTP/HTTPS scheme, and has a valid host.
// Network-level checks (private IPs, redirects) are done by the extractor at fetch time.
func ValidateURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Message: fmt.Sprintf("invalid URL: %v", err)}
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	return nil
}

// ValidatePDF checks that data looks like a PDF document.
// A missing upload is a ValidationError. Content without the PDF header is a
// malformed file and fails as an ExtractionError wrapping ErrNotPDF.
func ValidatePDF(data []byte) error {
	if len(data) == 0 {
		return &ValidationError{Field: "file", Message: "PDF file is required"}
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), pdfMagic) {
		return NewExtractionError(SourcePDF, ErrNotPDF)
	}
	return nil
}

// ValidateText checks that the primary text carries some content.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: "text", Message: "text is required"}
	}
	return nil
}
