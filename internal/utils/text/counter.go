// Package text provides the string helpers of the summarization pipeline:
// rune counting, rune-safe truncation, sentence splitting and bullet formatting.
// Every function is pure and safe for concurrent use.
package text

// CountRunes counts the number of Unicode characters (runes) in the given text.
// This function correctly handles multi-byte characters by counting runes instead of bytes.
//
// Examples:
//
//	CountRunes("hello")      // returns 5 (ASCII text)
//	CountRunes("こんにちは")   // returns 5 (Japanese text)
//	CountRunes("hello世界")   // returns 7 (mixed text)
//	CountRunes("")           // returns 0 (empty string)
func CountRunes(text string) int {
	return len([]rune(text))
}

// TruncateRunes returns at most limit runes of text.
// A non-positive limit yields an empty string; multi-byte characters are never split.
func TruncateRunes(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}
