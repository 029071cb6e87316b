package respond

import (
	"regexp"
)

var (
	// Patterns are applied in order, most specific first.
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	// Does not match strings already masked with '*'.
	openaiKeyPattern      = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	huggingFaceKeyPattern = regexp.MustCompile(`hf_[a-zA-Z0-9]{10,}`)
	bearerPattern         = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._~+/=-]+`)

	// Credentials embedded in URLs, e.g. article links with user:pass@host.
	urlCredentialPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
)

// SanitizeError returns the error message with API keys, bearer tokens and
// URL passwords masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = huggingFaceKeyPattern.ReplaceAllString(msg, "hf_****")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")
	msg = urlCredentialPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
