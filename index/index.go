package index

import (
	"fmt"
	"sort"
)

// Entry pairs a document vector with its owning occupation code. Entries are
// positional: the offset of an entry in the build slice is its stable
// insertion order, used for tie-breaking.
type Entry struct {
	Code   string
	Vector []float32
}

// Hit is one nearest-neighbor result.
type Hit struct {
	Code  string
	Score float32
}

// Index is an exact flat inner-product index. With normalized vectors the
// inner product is cosine similarity. At corpus sizes in the low thousands a
// linear scan is both exact and fast enough; approximate structures would be
// an optimization, not a correctness requirement.
//
// An Index is immutable after New; rebuilds construct a fresh Index and the
// caller swaps the reference.
type Index struct {
	codes      []string
	vectors    [][]float32
	dimensions int
}

// New builds an index wholesale from entries. All vectors must share the
// same dimensionality; entries are expected to be L2-normalized already.
func New(entries []Entry) (*Index, error) {
	idx := &Index{
		codes:   make([]string, len(entries)),
		vectors: make([][]float32, len(entries)),
	}

	for i, entry := range entries {
		if len(entry.Vector) == 0 {
			return nil, fmt.Errorf("entry %d (%s): empty vector", i, entry.Code)
		}
		if idx.dimensions == 0 {
			idx.dimensions = len(entry.Vector)
		}
		if len(entry.Vector) != idx.dimensions {
			return nil, fmt.Errorf("entry %d (%s): dimension mismatch: got %d, want %d",
				i, entry.Code, len(entry.Vector), idx.dimensions)
		}
		idx.codes[i] = entry.Code
		idx.vectors[i] = entry.Vector
	}

	return idx, nil
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	return len(idx.codes)
}

// Dimensions returns the vector dimensionality, or 0 for an empty index.
func (idx *Index) Dimensions() int {
	return idx.dimensions
}

// Vector returns the indexed vector at position i. Positions follow the
// build slice, so position i belongs to the i-th corpus record.
func (idx *Index) Vector(i int) ([]float32, error) {
	if i < 0 || i >= len(idx.vectors) {
		return nil, fmt.Errorf("vector position %d out of range [0,%d)", i, len(idx.vectors))
	}
	return idx.vectors[i], nil
}

// Entries returns a copy of the indexed entries in insertion order. The
// vectors are shared, not copied; callers must not mutate them.
func (idx *Index) Entries() []Entry {
	entries := make([]Entry, len(idx.codes))
	for i := range idx.codes {
		entries[i] = Entry{Code: idx.codes[i], Vector: idx.vectors[i]}
	}
	return entries
}

// Search returns the k highest-similarity entries for the query vector,
// strictly descending by score, ties broken by insertion order. k is clamped
// to the index size. An empty index returns no hits.
func (idx *Index) Search(query []float32, k int) ([]Hit, error) {
	if idx.Len() == 0 {
		return nil, nil
	}
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, want %d",
			len(query), idx.dimensions)
	}
	if k > idx.Len() {
		k = idx.Len()
	}
	if k <= 0 {
		return nil, nil
	}

	type scored struct {
		position int
		score    float32
	}
	all := make([]scored, idx.Len())
	for i, vector := range idx.vectors {
		all[i] = scored{position: i, score: DotProduct(query, vector)}
	}

	// Stable sort keeps insertion order within equal scores.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].score > all[j].score
	})

	hits := make([]Hit, k)
	for i := 0; i < k; i++ {
		hits[i] = Hit{Code: idx.codes[all[i].position], Score: all[i].score}
	}
	return hits, nil
}
