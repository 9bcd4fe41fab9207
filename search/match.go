package search

import (
	"strings"

	"github.com/udyoglabs/ncosearch/core"
)

// maxMatchedTerms bounds the number of attributed terms per result.
const maxMatchedTerms = 3

// Stop words to skip when attributing query tokens to synonym matches
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "who": true, "what": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// matchedTerms reports which of the record's synonyms and keywords literally
// overlap the query. It is a display aid only: the outcome has no effect on
// ranking or confidence. A term matches when it appears whole inside the
// query or when it shares a non-stop-word token with it.
func matchedTerms(query string, record *core.OccupationRecord) []string {
	queryTokens := tokenizeAndFilter(query)
	if len(queryTokens) == 0 {
		return nil
	}

	tokenSet := make(map[string]bool, len(queryTokens))
	for _, token := range queryTokens {
		tokenSet[token] = true
	}
	folded := strings.ToLower(query)

	candidates := make([]string, 0, len(record.Synonyms)+len(record.Keywords))
	candidates = append(candidates, record.Synonyms...)
	candidates = append(candidates, record.Keywords...)

	var matched []string
	seen := make(map[string]bool, maxMatchedTerms)
	for _, term := range candidates {
		if len(matched) == maxMatchedTerms {
			break
		}
		key := strings.ToLower(strings.TrimSpace(term))
		if key == "" || seen[key] {
			continue
		}
		if termMatches(key, folded, tokenSet) {
			seen[key] = true
			matched = append(matched, term)
		}
	}

	return matched
}

func termMatches(term, foldedQuery string, queryTokens map[string]bool) bool {
	if strings.Contains(foldedQuery, term) {
		return true
	}
	for _, token := range tokenizeAndFilter(term) {
		if queryTokens[token] {
			return true
		}
	}
	return false
}
