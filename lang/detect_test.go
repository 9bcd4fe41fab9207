package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/udyoglabs/ncosearch/core"
)

func TestDetect(t *testing.T) {
	t.Run("hindi", func(t *testing.T) {
		assert.Equal(t, core.LanguageHindi, Detect("गाड़ी मैकेनिक", ""))
	})

	t.Run("bengali", func(t *testing.T) {
		assert.Equal(t, core.LanguageBengali, Detect("গাড়ি মেকানিক", ""))
	})

	t.Run("english", func(t *testing.T) {
		assert.Equal(t, core.LanguageEnglish, Detect("person who fixes cars", ""))
	})

	t.Run("marathi via marker words", func(t *testing.T) {
		assert.Equal(t, core.LanguageMarathi, Detect("गाडी दुरुस्त करणारा", ""))
	})

	t.Run("devanagari without markers defaults to hindi", func(t *testing.T) {
		assert.Equal(t, core.LanguageHindi, Detect("वेल्डर", ""))
	})

	t.Run("override always wins", func(t *testing.T) {
		assert.Equal(t, core.LanguageMarathi, Detect("person who fixes cars", core.LanguageMarathi))
		assert.Equal(t, core.LanguageEnglish, Detect("गाड़ी मैकेनिक", core.LanguageEnglish))
	})

	t.Run("unsupported override falls through to detection", func(t *testing.T) {
		assert.Equal(t, core.LanguageEnglish, Detect("welder", core.Language("fr")))
		assert.Equal(t, core.LanguageEnglish, Detect("welder", core.LanguageUnknown))
	})

	t.Run("mixed script classified by dominant share", func(t *testing.T) {
		// Three Latin letters vs a longer Devanagari word.
		assert.Equal(t, core.LanguageHindi, Detect("tig वेल्डिंग मशीन ऑपरेटर", ""))
	})

	t.Run("latin wins ties", func(t *testing.T) {
		assert.Equal(t, core.LanguageEnglish, Detect("कार car", ""))
	})

	t.Run("non-latin ties resolve to english", func(t *testing.T) {
		// Two Devanagari letters against two Bengali letters.
		assert.Equal(t, core.LanguageEnglish, Detect("कर কর", ""))
	})

	t.Run("unrecognized script", func(t *testing.T) {
		assert.Equal(t, core.LanguageUnknown, Detect("電気技師", ""))
	})

	t.Run("no letters", func(t *testing.T) {
		assert.Equal(t, core.LanguageUnknown, Detect("1234 ?!", ""))
		assert.Equal(t, core.LanguageUnknown, Detect("", ""))
	})
}
