package worker

// truncateDisplay shortens s to at most maxRunes runes, appending "...".
// Truncation operates on runes (not bytes) so it never splits a multi-byte
// Unicode scalar (spec §4.5).
func truncateDisplay(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
