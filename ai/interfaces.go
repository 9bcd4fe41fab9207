package ai

import "context"

// Embedder generates vector embeddings for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
//
// The two entry points are NOT interchangeable: the E5 model family this
// engine targets uses asymmetric encoding, framing queries and documents
// with distinct textual prefixes. Embedding a query through EmbedDocuments
// (or vice versa) measurably degrades ranking quality.
type Embedder interface {
	// EmbedQuery generates an embedding for search query text.
	// Returns an error if the embedding generation fails.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments generates embeddings for corpus document texts in a
	// batch. Batching is the dominant cost lever of a reindex; callers
	// should pass full batches rather than loop one text at a time.
	// The returned slice preserves input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}
