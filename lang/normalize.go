package lang

import (
	"strings"
	"unicode"
)

// Normalize maps raw query text to the canonical form used for embedding
// and token matching: surrounding whitespace stripped, internal whitespace
// runs collapsed to single spaces, control characters removed, and Latin
// letters lowercased. Indic scripts carry no case and pass through unchanged.
//
// Normalize is idempotent and returns "" for empty or whitespace-only input.
func Normalize(text string) string {
	fields := strings.FieldsFunc(text, unicode.IsSpace)
	if len(fields) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, field := range fields {
		var word strings.Builder
		for _, r := range field {
			if unicode.IsControl(r) {
				continue
			}
			if unicode.Is(unicode.Latin, r) {
				r = unicode.ToLower(r)
			}
			word.WriteRune(r)
		}
		// A field made entirely of control characters strips to nothing
		// and must not leave a double space behind.
		if word.Len() == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(word.String())
	}
	return b.String()
}
