// Copyright 2025 Udyog Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reindex

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/udyoglabs/ncosearch/ai"
	"github.com/udyoglabs/ncosearch/core"
	"github.com/udyoglabs/ncosearch/index"
)

// Config holds tunables for an index build.
type Config struct {
	// BatchSize is the number of documents per embedding call. Embedding is
	// the dominant cost of a reindex, so documents go out in full batches,
	// never one at a time.
	BatchSize int

	// PoolSize is the number of batches embedded concurrently.
	PoolSize int

	// MaxRetries is the retry budget per embedding call.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration

	// ReportInterval is how often to report progress (number of records).
	ReportInterval int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	return &Config{
		BatchSize:      64,
		PoolSize:       poolSize,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		ReportInterval: 100,
	}
}

// Builder embeds corpus searchable texts in batches and assembles a fresh
// vector index. The previous index is never touched: a failed build leaves
// whatever the caller was serving fully intact.
type Builder struct {
	embedder ai.Embedder
	config   *Config
	pool     *ants.Pool
}

// NewBuilder creates a builder backed by a worker pool of config.PoolSize.
func NewBuilder(embedder ai.Embedder, config *Config) (*Builder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}

	poolSize := config.PoolSize
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &Builder{
		embedder: embedder,
		config:   config,
		pool:     pool,
	}, nil
}

// Release frees the worker pool.
func (b *Builder) Release() {
	b.pool.Release()
}

// Build embeds every record's searchable text and constructs a new index.
// Entry positions mirror record positions, preserving corpus insertion order
// for stable tie-breaking. Progress is written to progress when non-nil
// (typically os.Stderr for the CLI).
func (b *Builder) Build(ctx context.Context, records []*core.OccupationRecord, progress io.Writer) (*index.Index, error) {
	if len(records) == 0 {
		return index.New(nil)
	}

	entries := make([]index.Entry, len(records))
	for i, record := range records {
		entries[i] = index.Entry{Code: record.Code}
	}

	var tracker *ProgressTracker
	if progress != nil {
		tracker = NewProgressTracker(progress, len(records), b.config.ReportInterval)
		tracker.Start()
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		buildErr error
	)
	fail := func(err error) {
		errOnce.Do(func() { buildErr = err })
	}

	batchSize := b.config.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	for start := 0; start < len(records); start += batchSize {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}

		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		offset := start

		wg.Add(1)
		submitErr := b.pool.Submit(func() {
			defer wg.Done()
			if err := b.embedBatch(ctx, batch, entries[offset:offset+len(batch)]); err != nil {
				fail(err)
				return
			}
			if tracker != nil {
				tracker.Increment(len(batch))
			}
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
			break
		}
	}

	wg.Wait()
	if buildErr != nil {
		return nil, buildErr
	}
	if tracker != nil {
		tracker.Finish()
	}

	return index.New(entries)
}

// embedBatch embeds one batch of searchable texts into the entry slots.
// Vectors are normalized so the index's inner product is cosine similarity.
func (b *Builder) embedBatch(ctx context.Context, batch []*core.OccupationRecord, out []index.Entry) error {
	texts := make([]string, len(batch))
	for i, record := range batch {
		texts[i] = record.SearchableText
	}

	var vectors [][]float32
	err := retryWithBackoff(ctx, func() error {
		var err error
		vectors, err = b.embedder.EmbedDocuments(ctx, texts)
		return err
	}, b.config.MaxRetries, b.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("embedding batch of %d after %d attempts: %w", len(batch), b.config.MaxRetries, err)
	}

	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
	}

	for i := range out {
		out[i].Vector = index.Normalize(vectors[i])
	}
	return nil
}

// Calibrate measures confidence anchors against the freshly built index:
// record titles are embedded as queries, their similarity to their own
// document vector averages into the high anchor and their similarity to a
// neighboring record's vector into the low anchor. With fewer than two
// records there is nothing to measure and fallback is returned.
func (b *Builder) Calibrate(ctx context.Context, records []*core.OccupationRecord, idx *index.Index, fallback core.Calibration) (core.Calibration, error) {
	const maxSamples = 32

	if len(records) < 2 || idx.Len() != len(records) {
		return fallback, nil
	}

	step := len(records) / maxSamples
	if step < 1 {
		step = 1
	}

	var highSum, lowSum float64
	samples := 0
	for i := 0; i < len(records) && samples < maxSamples; i += step {
		queryVec, err := b.embedder.EmbedQuery(ctx, records[i].Title)
		if err != nil {
			return fallback, fmt.Errorf("calibration query %d: %w", i, err)
		}
		queryVec = index.Normalize(queryVec)

		own, err := idx.Vector(i)
		if err != nil {
			return fallback, err
		}
		other, err := idx.Vector((i + 1) % len(records))
		if err != nil {
			return fallback, err
		}

		highSum += float64(index.DotProduct(queryVec, own))
		lowSum += float64(index.DotProduct(queryVec, other))
		samples++
	}

	cal := core.Calibration{
		AnchorLow:  float32(lowSum / float64(samples)),
		AnchorHigh: float32(highSum / float64(samples)),
	}
	if !cal.Valid() {
		return fallback, nil
	}
	return cal, nil
}
