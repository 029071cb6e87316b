package extractor

import (
	"fmt"
	"time"
)

// ArticleConfig holds the configuration for downloading articles.
//
// Security settings:
//   - DenyPrivateIPs: Prevents SSRF attacks by blocking private IP addresses
//   - MaxBodySize: Prevents memory exhaustion from oversized responses
//   - MaxRedirects: Prevents infinite redirect loops
//   - Timeout: Prevents resource starvation from slow servers
type ArticleConfig struct {
	// Timeout is the maximum duration for one download attempt.
	// Default: 15s
	Timeout time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// This is enforced during response reading, not based on Content-Length header.
	// Default: 10485760 (10MB)
	MaxBodySize int64

	// MaxRedirects is the maximum number of HTTP redirects to follow.
	// Each redirect target is validated for security (SSRF check).
	// Default: 5
	MaxRedirects int

	// DenyPrivateIPs controls whether to block access to private IP addresses.
	// Should always be true in production.
	// Default: true
	DenyPrivateIPs bool

	// UserAgent identifies the extractor to remote servers.
	UserAgent string

	// MinFallbackParagraph is the shortest paragraph, in characters, kept by the
	// paragraph scrape used when readability finds nothing.
	// Default: 40
	MinFallbackParagraph int
}

// DefaultArticleConfig returns production-ready defaults for article downloads.
//
// Example:
//
//	config := DefaultArticleConfig()
//	config.Timeout = 30 * time.Second
//	extractor := NewArticleExtractor(config)
func DefaultArticleConfig() ArticleConfig {
	return ArticleConfig{
		Timeout:              15 * time.Second,
		MaxBodySize:          10 * 1024 * 1024, // 10MB
		MaxRedirects:         5,
		DenyPrivateIPs:       true,
		UserAgent:            "SmartSummarizerBot/1.0",
		MinFallbackParagraph: 40,
	}
}

// Validate checks if the configuration values are valid and safe.
//
// Validation rules:
//   - Timeout: > 0 (must have timeout)
//   - MaxBodySize: 1KB-100MB (prevent memory issues)
//   - MaxRedirects: 0-10 (reasonable redirect limit)
func (c *ArticleConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBodySize := int64(1024)              // 1KB
	maxBodySize := int64(100 * 1024 * 1024) // 100MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	if c.MinFallbackParagraph < 0 {
		return fmt.Errorf("min fallback paragraph must be non-negative, got %d", c.MinFallbackParagraph)
	}

	return nil
}
