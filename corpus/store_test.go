package corpus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udyoglabs/ncosearch/core"
)

func testRecords() []*core.OccupationRecord {
	return []*core.OccupationRecord{
		{
			Code:        "7212.0100",
			Title:       "Welder, Gas",
			Description: "Welds metal parts using gas flame",
			Synonyms:    []string{"gas welder", "welding technician"},
			Examples:    []string{"joins pipes with oxy-acetylene torch"},
			Keywords:    []string{"welding", "fabrication"},
			Hierarchy: core.Hierarchy{
				Division:     "7",
				DivisionName: "Craft and Related Trades Workers",
				SkillLevel:   "Skill Level 2",
			},
		},
		{
			Code:     "7231.0200",
			Title:    "Mechanic, Motor Vehicle",
			Synonyms: []string{"car mechanic", "auto mechanic"},
			Keywords: []string{"repair", "vehicles"},
		},
	}
}

func TestNewStore(t *testing.T) {
	t.Run("loads and derives searchable text", func(t *testing.T) {
		store, err := NewStore(testRecords())
		require.NoError(t, err)
		assert.Equal(t, 2, store.Len())

		record, err := store.Record("7212.0100")
		require.NoError(t, err)
		assert.Contains(t, record.SearchableText, "welder, gas")
		assert.Contains(t, record.SearchableText, "gas welder")
		assert.Contains(t, record.SearchableText, "fabrication")
		// Searchable text is normalized.
		assert.Equal(t, strings.ToLower(record.SearchableText), record.SearchableText)
	})

	t.Run("duplicate code is fatal", func(t *testing.T) {
		records := testRecords()
		records[1].Code = records[0].Code
		_, err := NewStore(records)
		assert.ErrorIs(t, err, core.ErrDuplicateCode)
	})

	t.Run("invalid record is fatal", func(t *testing.T) {
		records := testRecords()
		records[0].Title = ""
		_, err := NewStore(records)
		assert.ErrorIs(t, err, core.ErrInvalidRecord)
	})

	t.Run("case-insensitive synonym dedup at load", func(t *testing.T) {
		records := testRecords()
		records[0].Synonyms = []string{"Gas Welder", "gas welder", "braze welder"}
		store, err := NewStore(records)
		require.NoError(t, err)

		record, err := store.Record("7212.0100")
		require.NoError(t, err)
		assert.Equal(t, []string{"Gas Welder", "braze welder"}, record.Synonyms)
	})
}

func TestRecordUnknownCode(t *testing.T) {
	store, err := NewStore(testRecords())
	require.NoError(t, err)

	_, err = store.Record("9999.9999")
	assert.ErrorIs(t, err, core.ErrUnknownCode)
}

func TestRecordReturnsCopy(t *testing.T) {
	store, err := NewStore(testRecords())
	require.NoError(t, err)

	record, err := store.Record("7212.0100")
	require.NoError(t, err)
	record.Synonyms[0] = "mutated"
	record.Title = "mutated"

	fresh, err := store.Record("7212.0100")
	require.NoError(t, err)
	assert.Equal(t, "gas welder", fresh.Synonyms[0])
	assert.Equal(t, "Welder, Gas", fresh.Title)
}

func TestApplyUpdates(t *testing.T) {
	t.Run("add and remove", func(t *testing.T) {
		store, err := NewStore(testRecords())
		require.NoError(t, err)

		result := store.ApplyUpdates([]core.SynonymUpdate{
			{Code: "7212.0100", Add: []string{"TIG welder"}, Remove: []string{"welding technician"}},
		})
		assert.Equal(t, 1, result.Updated)
		assert.Empty(t, result.InvalidCodes)
		assert.True(t, result.RequiresReindex)
		assert.True(t, store.Dirty())

		record, err := store.Record("7212.0100")
		require.NoError(t, err)
		assert.Equal(t, []string{"gas welder", "TIG welder"}, record.Synonyms)
		assert.Contains(t, record.SearchableText, "tig welder")
		assert.NotContains(t, record.SearchableText, "welding technician")
	})

	t.Run("add dedups case-insensitively", func(t *testing.T) {
		store, err := NewStore(testRecords())
		require.NoError(t, err)

		result := store.ApplyUpdates([]core.SynonymUpdate{
			{Code: "7212.0100", Add: []string{"GAS WELDER"}},
		})
		assert.Equal(t, 0, result.Updated)
		assert.False(t, result.RequiresReindex)
		assert.False(t, store.Dirty())
	})

	t.Run("remove matches case-insensitively", func(t *testing.T) {
		store, err := NewStore(testRecords())
		require.NoError(t, err)

		result := store.ApplyUpdates([]core.SynonymUpdate{
			{Code: "7231.0200", Remove: []string{"CAR Mechanic"}},
		})
		assert.Equal(t, 1, result.Updated)

		record, err := store.Record("7231.0200")
		require.NoError(t, err)
		assert.Equal(t, []string{"auto mechanic"}, record.Synonyms)
	})

	t.Run("invalid code reported, batch continues", func(t *testing.T) {
		store, err := NewStore(testRecords())
		require.NoError(t, err)

		result := store.ApplyUpdates([]core.SynonymUpdate{
			{Code: "9999.9999", Add: []string{"x"}},
			{Code: "7212.0100", Add: []string{"arc welder"}},
		})
		assert.Equal(t, 1, result.Updated)
		assert.Equal(t, []string{"9999.9999"}, result.InvalidCodes)
		assert.True(t, result.RequiresReindex)
	})

	t.Run("mark clean resets dirty flag", func(t *testing.T) {
		store, err := NewStore(testRecords())
		require.NoError(t, err)

		store.ApplyUpdates([]core.SynonymUpdate{{Code: "7212.0100", Add: []string{"arc welder"}}})
		require.True(t, store.Dirty())
		store.MarkClean(store.Generation())
		assert.False(t, store.Dirty())
	})

	t.Run("mark clean against a stale generation is a no-op", func(t *testing.T) {
		store, err := NewStore(testRecords())
		require.NoError(t, err)
		observed := store.Generation()

		store.ApplyUpdates([]core.SynonymUpdate{{Code: "7212.0100", Add: []string{"arc welder"}}})
		require.True(t, store.Dirty())

		store.MarkClean(observed)
		assert.True(t, store.Dirty(), "edit after the observed generation must stay stale")

		store.MarkClean(store.Generation())
		assert.False(t, store.Dirty())
	})

	t.Run("generation advances only on effective edits", func(t *testing.T) {
		store, err := NewStore(testRecords())
		require.NoError(t, err)
		base := store.Generation()

		store.ApplyUpdates([]core.SynonymUpdate{{Code: "9999.9999", Add: []string{"x"}}})
		assert.Equal(t, base, store.Generation())

		store.ApplyUpdates([]core.SynonymUpdate{{Code: "7212.0100", Add: []string{"arc welder"}}})
		assert.Greater(t, store.Generation(), base)

		store.MarkDirty()
		assert.Greater(t, store.Generation(), base+1)
	})
}

func TestFingerprint(t *testing.T) {
	store, err := NewStore(testRecords())
	require.NoError(t, err)

	base := store.Fingerprint("multilingual-e5-small")

	t.Run("stable for unchanged corpus", func(t *testing.T) {
		assert.Equal(t, base, store.Fingerprint("multilingual-e5-small"))
	})

	t.Run("changes with model", func(t *testing.T) {
		assert.NotEqual(t, base, store.Fingerprint("multilingual-e5-base"))
	})

	t.Run("changes with synonym edits", func(t *testing.T) {
		store.ApplyUpdates([]core.SynonymUpdate{{Code: "7212.0100", Add: []string{"TIG welder"}}})
		assert.NotEqual(t, base, store.Fingerprint("multilingual-e5-small"))
	})
}
