package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udyoglabs/ncosearch/core"
	"github.com/udyoglabs/ncosearch/index"
	"github.com/udyoglabs/ncosearch/storage"
)

func testSnapshot(n int) *storage.Snapshot {
	entries := make([]index.Entry, n)
	for i := range entries {
		entries[i] = index.Entry{
			Code:   string(rune('a' + i%26)),
			Vector: []float32{float32(i), float32(i) + 0.5, -float32(i)},
		}
	}
	return &storage.Snapshot{
		Model:       "multilingual-e5-small",
		BuiltAt:     time.Now().UTC().Truncate(time.Microsecond),
		Calibration: core.Calibration{AnchorLow: 0.3, AnchorHigh: 0.8},
		Entries:     entries,
	}
}

func TestSnapshotRepository(t *testing.T) {
	store, err := NewMemorySnapshotStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	fp := core.Fingerprint(42)

	t.Run("load missing fingerprint", func(t *testing.T) {
		_, err := store.Load(ctx, fp)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("save and load", func(t *testing.T) {
		saved := testSnapshot(10)
		require.NoError(t, store.Save(ctx, fp, saved))

		loaded, err := store.Load(ctx, fp)
		require.NoError(t, err)
		assert.Equal(t, saved.Model, loaded.Model)
		assert.True(t, loaded.BuiltAt.Equal(saved.BuiltAt))
		assert.Equal(t, saved.Calibration, loaded.Calibration)
		assert.Equal(t, saved.Entries, loaded.Entries)
	})

	t.Run("save replaces previous snapshot", func(t *testing.T) {
		other := core.Fingerprint(43)
		require.NoError(t, store.Save(ctx, other, testSnapshot(4)))

		// Only the latest fingerprint remains loadable.
		_, err := store.Load(ctx, fp)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		loaded, err := store.Load(ctx, other)
		require.NoError(t, err)
		assert.Len(t, loaded.Entries, 4)
	})

	t.Run("entries exceeding one write batch", func(t *testing.T) {
		big := core.Fingerprint(44)
		saved := testSnapshot(entryWriteBatch*2 + 7)
		require.NoError(t, store.Save(ctx, big, saved))

		loaded, err := store.Load(ctx, big)
		require.NoError(t, err)
		assert.Equal(t, saved.Entries, loaded.Entries)
	})

	t.Run("empty corpus snapshot", func(t *testing.T) {
		empty := core.Fingerprint(45)
		require.NoError(t, store.Save(ctx, empty, &storage.Snapshot{
			Model:   "multilingual-e5-small",
			BuiltAt: time.Now().UTC(),
		}))

		loaded, err := store.Load(ctx, empty)
		require.NoError(t, err)
		assert.Empty(t, loaded.Entries)
	})
}
