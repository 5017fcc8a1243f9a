package moderation

import "strings"

// maxPreviewRunes bounds what a queue entry stores: a snippet, never the full
// submission.
const maxPreviewRunes = 180

// Preview returns a whitespace-collapsed snippet of at most maxPreviewRunes
// runes, ellipsis-truncated. Output at or under the limit passes through a
// second call unchanged.
func Preview(text string) string {
	collapsed := strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	r := []rune(collapsed)
	if len(r) <= maxPreviewRunes {
		return collapsed
	}
	return string(r[:maxPreviewRunes-1]) + "…"
}
