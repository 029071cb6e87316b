package summarizer

import (
	"fmt"
)

// instructionPrompt wraps text for instruction-following chat models so their output
// matches what a seq2seq summarizer returns: plain prose, one idea per sentence.
//
// Example output:
//
//	"Summarize the following text in plain sentences of between 22 and 150 words. ..."
func instructionPrompt(input string, minTokens, maxTokens int) string {
	minWords := minTokens * 3 / 4
	maxWords := maxTokens * 3 / 4
	if maxWords < 1 {
		maxWords = 1
	}
	if minWords > maxWords {
		minWords = maxWords
	}
	return fmt.Sprintf("Summarize the following text in plain sentences of between %d and %d words. "+
		"Write each key point as one complete sentence ending in a period. "+
		"Do not use headings, bullet markers, numbering or any preamble.\n\n%s",
		minWords, maxWords, input)
}
