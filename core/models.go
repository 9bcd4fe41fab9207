package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// Language identifies the language of a query for display and logging.
// Detection is a best-effort signal; the embedding model itself is
// multilingual, so an unrecognized language never changes the search path.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
	LanguageBengali Language = "bn"
	LanguageMarathi Language = "mr"
	LanguageUnknown Language = "unknown"
)

// SupportedLanguage reports whether tag is one of the languages the
// deployment recognizes. LanguageUnknown is not a valid override.
func SupportedLanguage(tag Language) bool {
	switch tag {
	case LanguageEnglish, LanguageHindi, LanguageBengali, LanguageMarathi:
		return true
	}
	return false
}

// Fingerprint is a content hash identifying a corpus state. Two corpora with
// identical codes and searchable texts, embedded by the same model, produce
// the same fingerprint.
type Fingerprint uint64

// FingerprintFromContent hashes text content with BLAKE2b into a Fingerprint.
func FingerprintFromContent(text string) Fingerprint {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return Fingerprint(binary.LittleEndian.Uint64(sum))
}

// Hierarchy carries the NCO classification metadata of an occupation.
// It is echoed on search results for display and never used in ranking.
type Hierarchy struct {
	Division      string `json:"division"`
	DivisionName  string `json:"division_name"`
	SubDivision   string `json:"sub_division"`
	MajorGroup    string `json:"major_group"`
	SubMajorGroup string `json:"sub_major_group"`
	SkillLevel    string `json:"skill_level"`
}

// OccupationRecord is one entry of the NCO taxonomy, enriched by the offline
// curation pipeline with synonyms, examples and search keywords.
//
// Code is immutable once loaded. SearchableText is derived from the other
// text fields and must be recomputed whenever synonyms change: the vector
// index is correct only while every live record's vector was built from its
// current searchable text.
type OccupationRecord struct {
	Code           string    `json:"nco_code"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Synonyms       []string  `json:"synonyms"`
	Examples       []string  `json:"examples"`
	Keywords       []string  `json:"search_keywords"`
	Hierarchy      Hierarchy `json:"hierarchy"`
	SearchableText string    `json:"searchable_text"`
	QualityScore   float64   `json:"quality_score"` // informational only
}

// SearchQuery is a search request after boundary validation.
type SearchQuery struct {
	Text     string   `json:"query"`
	K        int      `json:"k"`
	Language Language `json:"language,omitempty"` // optional explicit override
}

// SearchResult is a single ranked match.
type SearchResult struct {
	Code            string    `json:"nco_code"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Score           float32   `json:"score"`      // raw similarity, monotonic with relevance
	Confidence      float64   `json:"confidence"` // calibrated, in [0,1]
	MatchedSynonyms []string  `json:"matched_synonyms"`
	Hierarchy       Hierarchy `json:"hierarchy"`
}

// SearchResponse is the full answer to a SearchQuery.
type SearchResponse struct {
	Query         string          `json:"query"`
	Language      Language        `json:"language"`
	LowConfidence bool            `json:"low_confidence"`
	Results       []*SearchResult `json:"results"`
}

// SynonymUpdate describes an edit to one record's synonym set.
type SynonymUpdate struct {
	Code   string   `json:"nco_code"`
	Add    []string `json:"add,omitempty"`
	Remove []string `json:"remove,omitempty"`
}

// UpdateResult reports the outcome of a batch synonym update. Valid entries
// are applied and invalid codes collected; the batch never aborts as a whole.
type UpdateResult struct {
	Updated         int      `json:"updated"`
	InvalidCodes    []string `json:"invalid_codes"`
	RequiresReindex bool     `json:"requires_reindex"`
}

// ReindexResult reports a completed index rebuild.
type ReindexResult struct {
	JobID      string `json:"job_id"`
	Count      int    `json:"count"`
	DurationMS int64  `json:"duration_ms"`
	FromCache  bool   `json:"from_cache"`
	Dimensions int    `json:"dimensions"`
}
