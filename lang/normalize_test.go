package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("trims and collapses whitespace", func(t *testing.T) {
		assert.Equal(t, "gas welder", Normalize("  gas \t\n  welder  "))
	})

	t.Run("lowercases latin", func(t *testing.T) {
		assert.Equal(t, "tig welder", Normalize("TIG Welder"))
	})

	t.Run("leaves devanagari untouched", func(t *testing.T) {
		assert.Equal(t, "गाड़ी मैकेनिक", Normalize("गाड़ी   मैकेनिक"))
	})

	t.Run("leaves bengali untouched", func(t *testing.T) {
		assert.Equal(t, "গাড়ি মেকানিক", Normalize(" গাড়ি মেকানিক "))
	})

	t.Run("strips control characters", func(t *testing.T) {
		assert.Equal(t, "welder", Normalize("wel\x00der\x07"))
	})

	t.Run("control-only token leaves a single space", func(t *testing.T) {
		assert.Equal(t, "car mechanic", Normalize("car \x01 mechanic"))
		assert.Equal(t, "car mechanic", Normalize("car \x01\x02 \x03 mechanic"))
	})

	t.Run("control-only input", func(t *testing.T) {
		assert.Equal(t, "", Normalize("\x01 \x02"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", Normalize(""))
	})

	t.Run("whitespace-only input", func(t *testing.T) {
		assert.Equal(t, "", Normalize("  \t \n "))
	})

	t.Run("idempotent", func(t *testing.T) {
		inputs := []string{
			"  TIG  Welder ",
			"गाड़ी   मैकेनिक",
			"person who fixes cars",
			"Mixed स्क्रिप्ट Query",
			"car \x01 mechanic",
			"",
		}
		for _, in := range inputs {
			once := Normalize(in)
			assert.Equal(t, once, Normalize(once), "input %q", in)
		}
	})
}
