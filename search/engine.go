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


package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/udyoglabs/ncosearch/ai"
	"github.com/udyoglabs/ncosearch/core"
	"github.com/udyoglabs/ncosearch/corpus"
	"github.com/udyoglabs/ncosearch/index"
	"github.com/udyoglabs/ncosearch/lang"
	"github.com/udyoglabs/ncosearch/reindex"
	"github.com/udyoglabs/ncosearch/storage"
)

// DefaultLowConfidenceThreshold flags responses whose best calibrated
// confidence falls below it.
const DefaultLowConfidenceThreshold = 0.45

// retrievalMultiplier widens the candidate pool before truncating to k, so
// a borderline tie at the cutoff is resolved by the full ranking.
const retrievalMultiplier = 2

// snapshot pairs an immutable index with the calibration measured when it
// was built. Searches read one snapshot for their whole lifetime; rebuilds
// swap in a fresh one atomically.
type snapshot struct {
	idx *index.Index
	cal core.Calibration
}

// Engine answers occupation searches over a corpus store. All methods are
// safe for concurrent use: searches never block each other, synonym edits
// take effect on the next rebuild, and at most one rebuild runs at a time.
type Engine struct {
	store    *corpus.Store
	embedder ai.Embedder
	builder  *reindex.Builder

	snap      atomic.Pointer[snapshot]
	reindexMu sync.Mutex

	threshold   float64
	fallbackCal core.Calibration
	snapshots   storage.SnapshotStore
	model       string
	sink        EventSink
	progress    io.Writer
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEventSink directs search events to the sink. Defaults to discarding.
func WithEventSink(sink EventSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithLowConfidenceThreshold overrides the low-confidence cutoff.
func WithLowConfidenceThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// WithFallbackCalibration sets the calibration used when build-time
// measurement fails or is degenerate.
func WithFallbackCalibration(cal core.Calibration) Option {
	return func(e *Engine) {
		e.fallbackCal = cal
	}
}

// WithSnapshotStore enables snapshot persistence. Bootstrap loads from the
// store when the corpus fingerprint matches; every rebuild saves back.
func WithSnapshotStore(snapshots storage.SnapshotStore) Option {
	return func(e *Engine) {
		e.snapshots = snapshots
	}
}

// WithModel records the embedding model name in corpus fingerprints, so a
// model change invalidates persisted snapshots.
func WithModel(model string) Option {
	return func(e *Engine) {
		e.model = model
	}
}

// WithProgress writes rebuild progress to w, typically a terminal.
func WithProgress(w io.Writer) Option {
	return func(e *Engine) {
		e.progress = w
	}
}

// NewEngine creates a search engine. The index starts empty; call Bootstrap
// or Reindex before searching.
func NewEngine(store *corpus.Store, embedder ai.Embedder, builder *reindex.Builder, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if builder == nil {
		return nil, ErrBuilderRequired
	}

	e := &Engine{
		store:       store,
		embedder:    embedder,
		builder:     builder,
		threshold:   DefaultLowConfidenceThreshold,
		fallbackCal: core.DefaultCalibration(),
		sink:        noopSink{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Ready reports whether an index has been built.
func (e *Engine) Ready() bool {
	return e.snap.Load() != nil
}

// Stale reports whether the corpus has edits the current index predates.
func (e *Engine) Stale() bool {
	return e.store.Dirty()
}

// Search runs the full retrieval flow for one query. Searches served while
// a rebuild is in flight use the previous index and are answered normally.
func (e *Engine) Search(ctx context.Context, query core.SearchQuery) (*core.SearchResponse, error) {
	start := time.Now()

	core.ClampQuery(&query)
	normalized := lang.Normalize(query.Text)
	if normalized == "" {
		return nil, core.ErrEmptyQuery
	}
	language := lang.Detect(normalized, query.Language)

	snap := e.snap.Load()
	if snap == nil {
		return nil, core.ErrIndexNotReady
	}

	response := &core.SearchResponse{
		Query:    normalized,
		Language: language,
		Results:  []*core.SearchResult{},
	}

	if snap.idx.Len() > 0 {
		vector, err := e.embedder.EmbedQuery(ctx, normalized)
		if err != nil {
			return nil, fmt.Errorf("embedding query: %w", err)
		}
		hits, err := snap.idx.Search(index.Normalize(vector), query.K*retrievalMultiplier)
		if err != nil {
			return nil, fmt.Errorf("searching index: %w", err)
		}
		if len(hits) > query.K {
			hits = hits[:query.K]
		}

		for _, hit := range hits {
			record, err := e.store.Record(hit.Code)
			if err != nil {
				// Index and corpus disagree; the index predates a corpus
				// swap. Skip rather than fail the whole search.
				e.logger.Warn("indexed code missing from corpus", slog.String("code", hit.Code))
				continue
			}
			response.Results = append(response.Results, &core.SearchResult{
				Code:            record.Code,
				Title:           record.Title,
				Description:     record.Description,
				Score:           hit.Score,
				Confidence:      snap.cal.Confidence(hit.Score),
				MatchedSynonyms: matchedTerms(normalized, record),
				Hierarchy:       record.Hierarchy,
			})
		}
		response.LowConfidence = len(response.Results) > 0 &&
			response.Results[0].Confidence < e.threshold
	}

	e.emit(response, query.K, time.Since(start))
	return response, nil
}

// GetRecord returns the full record for an occupation code.
func (e *Engine) GetRecord(code string) (*core.OccupationRecord, error) {
	return e.store.Record(code)
}

// UpdateSynonyms applies a batch of synonym edits to the corpus. The live
// index keeps serving the previous text until Reindex is called; the result
// reports whether a rebuild is pending.
func (e *Engine) UpdateSynonyms(updates []core.SynonymUpdate) core.UpdateResult {
	return e.store.ApplyUpdates(updates)
}

// Bootstrap builds the first index, loading a persisted snapshot instead of
// re-embedding when one matches the current corpus fingerprint.
func (e *Engine) Bootstrap(ctx context.Context) (core.ReindexResult, error) {
	if !e.reindexMu.TryLock() {
		return core.ReindexResult{}, core.ErrReindexInProgress
	}
	defer e.reindexMu.Unlock()
	return e.rebuild(ctx, true)
}

// Reindex re-embeds the whole corpus and atomically swaps in the new index.
// At most one rebuild runs at a time; concurrent calls fail fast with
// core.ErrReindexInProgress while searches continue on the old index.
func (e *Engine) Reindex(ctx context.Context) (core.ReindexResult, error) {
	if !e.reindexMu.TryLock() {
		return core.ReindexResult{}, core.ErrReindexInProgress
	}
	defer e.reindexMu.Unlock()
	return e.rebuild(ctx, false)
}

func (e *Engine) rebuild(ctx context.Context, tryCache bool) (core.ReindexResult, error) {
	start := time.Now()
	jobID := uuid.NewString()
	generation := e.store.Generation()
	records := e.store.Records()
	fingerprint := e.store.Fingerprint(e.model)

	if tryCache && e.snapshots != nil {
		if result, ok := e.loadSnapshot(ctx, fingerprint, len(records), generation); ok {
			result.JobID = jobID
			result.DurationMS = time.Since(start).Milliseconds()
			e.logger.Info("index restored from snapshot",
				slog.String("job_id", jobID),
				slog.Int("count", result.Count))
			return result, nil
		}
	}

	idx, err := e.builder.Build(ctx, records, e.progress)
	if err != nil {
		return core.ReindexResult{}, fmt.Errorf("building index: %w", err)
	}

	cal, err := e.builder.Calibrate(ctx, records, idx, e.fallbackCal)
	if err != nil {
		e.logger.Warn("calibration failed, using fallback", slog.Any("error", err))
		cal = e.fallbackCal
	}

	e.snap.Store(&snapshot{idx: idx, cal: cal})
	e.store.MarkClean(generation)

	// An edit that landed during the build is not in these vectors; do not
	// persist them, or a later bootstrap could restore a stale index as
	// current.
	if e.snapshots != nil && e.store.Generation() == generation {
		snap := &storage.Snapshot{
			Model:       e.model,
			BuiltAt:     time.Now().UTC(),
			Calibration: cal,
			Entries:     idx.Entries(),
		}
		if err := e.snapshots.Save(ctx, fingerprint, snap); err != nil {
			e.logger.Warn("snapshot save failed", slog.Any("error", err))
		}
	}

	result := core.ReindexResult{
		JobID:      jobID,
		Count:      idx.Len(),
		DurationMS: time.Since(start).Milliseconds(),
		Dimensions: idx.Dimensions(),
	}
	e.logger.Info("index rebuilt",
		slog.String("job_id", jobID),
		slog.Int("count", result.Count),
		slog.Int64("duration_ms", result.DurationMS))
	return result, nil
}

// loadSnapshot tries to restore a persisted index. Any failure is logged
// and reported as a miss so the caller falls back to a fresh build.
func (e *Engine) loadSnapshot(ctx context.Context, fingerprint core.Fingerprint, want int, generation uint64) (core.ReindexResult, bool) {
	stored, err := e.snapshots.Load(ctx, fingerprint)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			e.logger.Warn("snapshot load failed", slog.Any("error", err))
		}
		return core.ReindexResult{}, false
	}

	idx, err := index.New(stored.Entries)
	if err != nil || idx.Len() != want {
		e.logger.Warn("persisted snapshot unusable, rebuilding", slog.Any("error", err))
		return core.ReindexResult{}, false
	}

	cal := stored.Calibration
	if !cal.Valid() {
		cal = e.fallbackCal
	}
	e.snap.Store(&snapshot{idx: idx, cal: cal})
	e.store.MarkClean(generation)

	return core.ReindexResult{
		Count:      idx.Len(),
		FromCache:  true,
		Dimensions: idx.Dimensions(),
	}, true
}

// Stats describes the engine's current index and corpus state.
type Stats struct {
	Records     int              `json:"records"`
	Indexed     int              `json:"indexed"`
	Dimensions  int              `json:"dimensions"`
	Calibration core.Calibration `json:"calibration"`
	Stale       bool             `json:"stale"`
}

func (e *Engine) Stats() Stats {
	stats := Stats{
		Records: e.store.Len(),
		Stale:   e.store.Dirty(),
	}
	if snap := e.snap.Load(); snap != nil {
		stats.Indexed = snap.idx.Len()
		stats.Dimensions = snap.idx.Dimensions()
		stats.Calibration = snap.cal
	}
	return stats
}

// emit hands the event to the sink on its own goroutine. A panicking sink
// is contained there; the search result is already on its way back.
func (e *Engine) emit(response *core.SearchResponse, k int, latency time.Duration) {
	event := Event{
		Time:          time.Now().UTC(),
		Query:         response.Query,
		Language:      response.Language,
		K:             k,
		ResultCount:   len(response.Results),
		LowConfidence: response.LowConfidence,
		Latency:       latency,
	}
	if len(response.Results) > 0 {
		event.TopCode = response.Results[0].Code
		event.TopConfidence = response.Results[0].Confidence
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("event sink panicked", slog.Any("panic", r))
			}
		}()
		e.sink.Record(event)
	}()
}
