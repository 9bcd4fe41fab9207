package openai

// truncateRunes cuts text to at most max runes. Over-length input would
// otherwise be rejected by the embedding provider mid-reindex.
func truncateRunes(text string, max int) string {
	if max <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == max {
			return text[:i]
		}
		count++
	}
	return text
}
