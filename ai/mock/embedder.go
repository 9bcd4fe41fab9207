package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
)

// DefaultDimensions is the vector size of the default deterministic behavior,
// matching the multilingual-e5-small output size.
const DefaultDimensions = 384

// Embedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
//
// The default behavior builds a bag-of-tokens vector: each token hashes to a
// deterministic pseudo-random direction and the token directions are summed
// and L2-normalized. Texts sharing tokens therefore score high cosine
// similarity while disjoint texts score near zero, which is enough signal
// for ranking, calibration and synonym round-trip tests without a model.
type Embedder struct {
	// EmbedQueryFunc is called by EmbedQuery if set.
	EmbedQueryFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedDocumentsFunc is called by EmbedDocuments if set.
	EmbedDocumentsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	mu            sync.Mutex
	queryCalls    int
	documentCalls int
}

// NewEmbedder creates a mock embedder with default deterministic behavior.
// Returns the concrete type to allow behavior injection and call assertions.
func NewEmbedder() *Embedder {
	return &Embedder{}
}

// EmbedQuery generates a deterministic bag-of-tokens embedding.
func (m *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.queryCalls++
	m.mu.Unlock()

	if m.EmbedQueryFunc != nil {
		return m.EmbedQueryFunc(ctx, text)
	}
	return tokenBagVector(text, DefaultDimensions), nil
}

// EmbedDocuments generates deterministic bag-of-tokens embeddings.
func (m *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.documentCalls++
	m.mu.Unlock()

	if m.EmbedDocumentsFunc != nil {
		return m.EmbedDocumentsFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = tokenBagVector(text, DefaultDimensions)
	}
	return vectors, nil
}

// QueryCalls returns the number of EmbedQuery invocations.
func (m *Embedder) QueryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}

// DocumentCalls returns the number of EmbedDocuments invocations.
func (m *Embedder) DocumentCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.documentCalls
}

// Reset clears call counts and injected behavior.
func (m *Embedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCalls = 0
	m.documentCalls = 0
	m.EmbedQueryFunc = nil
	m.EmbedDocumentsFunc = nil
}

// tokenBagVector sums per-token hash directions and normalizes the result.
func tokenBagVector(text string, dim int) []float32 {
	vector := make([]float32, dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		addTokenDirection(vector, token)
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}
	return vector
}

// addTokenDirection accumulates the token's deterministic direction in place.
// Components are centered so unrelated tokens are near-orthogonal.
func addTokenDirection(vector []float32, token string) {
	h := fnv.New32a()
	h.Write([]byte(token))
	seed := h.Sum32()

	for i := range vector {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] += float32(seed%2000)/1000.0 - 1.0
	}
}
