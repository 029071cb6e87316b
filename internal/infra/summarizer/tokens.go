package summarizer

import (
	"smart-summarizer/internal/utils/text"
)

// charsPerToken approximates subword tokenizers on English prose.
const charsPerToken = 4

// EstimateTokens returns a rough token count for s.
func EstimateTokens(s string) int {
	return (text.CountRunes(s) + charsPerToken - 1) / charsPerToken
}

// TruncateToTokens cuts s to approximately maxTokens tokens.
// It is used by backends that do not expose their tokenizer.
// The second result reports whether anything was dropped.
func TruncateToTokens(s string, maxTokens int) (string, bool) {
	if maxTokens <= 0 {
		return s, false
	}
	limit := maxTokens * charsPerToken
	if text.CountRunes(s) <= limit {
		return s, false
	}
	return text.TruncateRunes(s, limit), true
}
