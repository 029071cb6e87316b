package summarizer

import (
	"context"
	"strings"

	"smart-summarizer/internal/utils/text"
)

// BackendNoop names the extractive fallback.
const BackendNoop = "noop"

// NoOp is an extractive engine that returns the leading sentences of the prompt.
// It needs no model and is meant for development and tests.
type NoOp struct{}

// NewNoOp creates a new NoOp engine.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Summarize keeps whole leading sentences while they fit a budget of maxOutputLength
// tokens at four characters per token. A first sentence longer than the budget is cut.
func (n *NoOp) Summarize(_ context.Context, prompt string, maxInputLength, maxOutputLength int) (string, error) {
	if strings.TrimSpace(prompt) == "" || maxOutputLength <= 0 {
		return "", nil
	}

	input, _ := TruncateToTokens(prompt, maxInputLength)
	budget := maxOutputLength * charsPerToken

	var kept []string
	used := 0
	for _, s := range text.SplitSentences(input) {
		// one separating space per additional sentence
		need := text.CountRunes(s)
		if len(kept) > 0 {
			need++
		}
		if used+need > budget {
			if len(kept) == 0 {
				kept = append(kept, text.TruncateRunes(s, budget))
			}
			break
		}
		kept = append(kept, s)
		used += need
	}
	return strings.Join(kept, " "), nil
}
