package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid entries", func(t *testing.T) {
		idx, err := New([]Entry{
			{Code: "a", Vector: []float32{1, 0, 0}},
			{Code: "b", Vector: []float32{0, 1, 0}},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, idx.Len())
		assert.Equal(t, 3, idx.Dimensions())
	})

	t.Run("empty index", func(t *testing.T) {
		idx, err := New(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, idx.Len())
		assert.Equal(t, 0, idx.Dimensions())
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := New([]Entry{
			{Code: "a", Vector: []float32{1, 0, 0}},
			{Code: "b", Vector: []float32{0, 1}},
		})
		assert.Error(t, err)
	})

	t.Run("empty vector", func(t *testing.T) {
		_, err := New([]Entry{{Code: "a"}})
		assert.Error(t, err)
	})
}

func TestSearch(t *testing.T) {
	idx, err := New([]Entry{
		{Code: "a", Vector: []float32{1, 0, 0}},
		{Code: "b", Vector: []float32{0.9, 0.1, 0}},
		{Code: "c", Vector: []float32{0, 0, 1}},
	})
	require.NoError(t, err)

	t.Run("descending by similarity", func(t *testing.T) {
		hits, err := idx.Search([]float32{1, 0, 0}, 3)
		require.NoError(t, err)
		require.Len(t, hits, 3)
		assert.Equal(t, "a", hits[0].Code)
		assert.Equal(t, "b", hits[1].Code)
		assert.Equal(t, "c", hits[2].Code)
		for i := 1; i < len(hits); i++ {
			assert.LessOrEqual(t, hits[i].Score, hits[i-1].Score)
		}
	})

	t.Run("k clamped to index size", func(t *testing.T) {
		hits, err := idx.Search([]float32{1, 0, 0}, 50)
		require.NoError(t, err)
		assert.Len(t, hits, 3)
	})

	t.Run("k smaller than index", func(t *testing.T) {
		hits, err := idx.Search([]float32{1, 0, 0}, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "a", hits[0].Code)
	})

	t.Run("ties broken by insertion order", func(t *testing.T) {
		tied, err := New([]Entry{
			{Code: "x", Vector: []float32{0, 1}},
			{Code: "y", Vector: []float32{0, 1}},
			{Code: "z", Vector: []float32{0, 1}},
		})
		require.NoError(t, err)

		hits, err := tied.Search([]float32{0, 1}, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y", "z"}, []string{hits[0].Code, hits[1].Code, hits[2].Code})
	})

	t.Run("query dimension mismatch", func(t *testing.T) {
		_, err := idx.Search([]float32{1, 0}, 1)
		assert.Error(t, err)
	})

	t.Run("empty index returns no hits", func(t *testing.T) {
		empty, err := New(nil)
		require.NoError(t, err)
		hits, err := empty.Search([]float32{1, 0, 0}, 5)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("non-positive k", func(t *testing.T) {
		hits, err := idx.Search([]float32{1, 0, 0}, 0)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestNormalize(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		v := Normalize([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)

		var mag float64
		for _, x := range v {
			mag += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(mag), 1e-6)
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		v := Normalize([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, v)
	})

	t.Run("empty vector", func(t *testing.T) {
		assert.Empty(t, Normalize(nil))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := []float32{3, 4}
		Normalize(in)
		assert.Equal(t, []float32{3, 4}, in)
	})
}

func TestDotProduct(t *testing.T) {
	assert.InDelta(t, 1.0, DotProduct([]float32{1, 0}, []float32{1, 0}), 1e-6)
	assert.InDelta(t, 0.0, DotProduct([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, DotProduct([]float32{1, 0}, []float32{-1, 0}), 1e-6)
}
