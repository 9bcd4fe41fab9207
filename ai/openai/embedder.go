package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/udyoglabs/ncosearch/ai"
)

// E5-family asymmetric encoding prefixes. Query and document text must be
// framed differently or ranking quality degrades.
const (
	queryPrefix    = "query: "
	documentPrefix = "passage: "
)

// Embedder implements ai.Embedder against OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder     embeddings.Embedder
	maxTextRunes int
	logger       *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// "none" as token works for local OpenAI-compatible services that don't
	// require authentication.
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:     embedder,
		maxTextRunes: config.MaxTextRunes,
		logger:       slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns the ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedQuery generates an embedding for search query text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("embedding query", "length", len(text))

	text = truncateRunes(text, e.maxTextRunes)
	vectors, err := e.embedder.EmbedDocuments(ctx, []string{queryPrefix + text})
	if err != nil {
		e.logger.Error("failed to embed query", "err", err)
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) == 0 {
		e.logger.Warn("embedder returned empty result")
		return []float32{}, nil
	}
	return vectors[0], nil
}

// EmbedDocuments generates embeddings for corpus document texts in a batch.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("embedding documents", "count", len(texts))

	prefixed := make([]string, len(texts))
	for i, text := range texts {
		prefixed[i] = documentPrefix + truncateRunes(text, e.maxTextRunes)
	}

	vectors, err := e.embedder.EmbedDocuments(ctx, prefixed)
	if err != nil {
		e.logger.Error("failed to embed documents", "count", len(texts), "err", err)
		return nil, fmt.Errorf("embedding %d documents: %w", len(texts), err)
	}
	return vectors, nil
}
