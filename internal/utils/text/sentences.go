package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// isTerminator reports whether r ends a sentence.
func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// isSpace extends unicode.IsSpace with the ASCII information separators
// U+001C to U+001F, so they split and trim like any other whitespace.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// SplitSentences splits text into sentence-like units.
//
// A boundary is the whitespace run that immediately follows '.', '!' or '?'.
// The punctuation stays attached to the preceding sentence and the whitespace
// is discarded. Each unit is trimmed and empty units are dropped, so trailing
// text without terminal punctuation survives as its own unit.
//
// Example:
//
//	SplitSentences("Hello world. How are you? Fine!")
//	// []string{"Hello world.", "How are you?", "Fine!"}
//
// Empty or whitespace-only input returns an empty, non-nil slice.
func SplitSentences(text string) []string {
	sentences := make([]string, 0)
	start := 0
	prev := rune(-1)

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if isSpace(r) && isTerminator(prev) {
			sentences = appendTrimmed(sentences, text[start:i])
			// swallow the whole whitespace run
			j := i
			for j < len(text) {
				ws, wsSize := utf8.DecodeRuneInString(text[j:])
				if !isSpace(ws) {
					break
				}
				j += wsSize
			}
			start = j
			prev = ' '
			i = j
			continue
		}
		prev = r
		i += size
	}

	return appendTrimmed(sentences, text[start:])
}

func appendTrimmed(dst []string, segment string) []string {
	if s := strings.TrimFunc(segment, isSpace); s != "" {
		return append(dst, s)
	}
	return dst
}
