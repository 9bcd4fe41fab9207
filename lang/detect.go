package lang

import (
	"strings"
	"unicode"

	"github.com/udyoglabs/ncosearch/core"
)

// marathiMarkers is a small lexical list of Marathi function words used to
// split Devanagari text between Hindi and Marathi. The list is a heuristic
// of limited precision; Hindi remains the tie-break default since it is the
// dominant Devanagari query source for this deployment.
var marathiMarkers = map[string]bool{
	"आहे":    true, // "is"
	"आहेत":   true, // "are"
	"आणि":    true, // "and"
	"पाहिजे": true, // "want/need"
	"माझा":   true,
	"माझी":   true,
	"तुमचा":  true,
	"काय":    true,
	"कोण":    true,
	"करणारा": true, // "one who does"
}

// Detect classifies query text into one of the supported language tags by
// dominant Unicode script share. An explicit supported override always wins.
//
// Devanagari-dominant text is split between Hindi and Marathi by the marker
// word list above. Mixed-script input is classified by the script with the
// strictly greatest code-point share; any tie for the lead resolves to
// English. Text dominated by an unrecognized script yields
// core.LanguageUnknown, which downstream code treats identically to English.
//
// Detect never fails and exists for display and logging only; it never
// selects a different embedding path.
func Detect(text string, override core.Language) core.Language {
	if core.SupportedLanguage(override) {
		return override
	}

	var latin, devanagari, bengali, other int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		switch {
		case unicode.Is(unicode.Latin, r):
			latin++
		case unicode.Is(unicode.Devanagari, r):
			devanagari++
		case unicode.Is(unicode.Bengali, r):
			bengali++
		default:
			other++
		}
	}

	switch {
	case latin >= devanagari && latin >= bengali && latin >= other && latin > 0:
		return core.LanguageEnglish
	case devanagari > bengali && devanagari > other:
		return detectDevanagari(text)
	case bengali > devanagari && bengali > other:
		return core.LanguageBengali
	case other > devanagari && other > bengali:
		// Unrecognized script dominates.
		return core.LanguageUnknown
	case devanagari == 0 && bengali == 0 && other == 0:
		// No letters at all.
		return core.LanguageUnknown
	default:
		// Non-Latin scripts tied for the lead.
		return core.LanguageEnglish
	}
}

// detectDevanagari splits Devanagari text between Hindi and Marathi.
func detectDevanagari(text string) core.Language {
	for _, word := range strings.Fields(text) {
		if marathiMarkers[word] {
			return core.LanguageMarathi
		}
	}
	return core.LanguageHindi
}
