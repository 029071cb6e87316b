package text

import "strings"

// BulletPrefix starts every line of a bulleted summary.
const BulletPrefix = "- "

// FormatBullets renders sentences as a bulleted list, one "- " prefixed line per sentence.
// Lines are joined with a single newline and there is no trailing newline.
// An empty sequence yields an empty string.
func FormatBullets(sentences []string) string {
	if len(sentences) == 0 {
		return ""
	}

	var b strings.Builder
	for i, s := range sentences {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(BulletPrefix)
		b.WriteString(s)
	}
	return b.String()
}
