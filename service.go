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


package ncosearch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/udyoglabs/ncosearch/ai"
	"github.com/udyoglabs/ncosearch/ai/openai"
	"github.com/udyoglabs/ncosearch/config"
	"github.com/udyoglabs/ncosearch/core"
	"github.com/udyoglabs/ncosearch/corpus"
	"github.com/udyoglabs/ncosearch/reindex"
	"github.com/udyoglabs/ncosearch/search"
	"github.com/udyoglabs/ncosearch/storage"
	"github.com/udyoglabs/ncosearch/storage/badger"
)

// Service wires the dataset, embedding client, index builder, and search
// engine together behind one handle. It supports hot dataset reloads: the
// engine serving searches is swapped wholesale when the dataset file changes.
type Service struct {
	mu     sync.RWMutex
	store  *corpus.Store
	engine *search.Engine

	cfg       *config.Config
	embedder  ai.Embedder
	builder   *reindex.Builder
	snapshots storage.SnapshotStore
	sink      search.EventSink
	eventLog  *os.File
	progress  io.Writer
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	embedder ai.Embedder
	sink     search.EventSink
	progress io.Writer
	logger   *slog.Logger
}

// WithEmbedder injects an embedder, replacing the HTTP client built from
// the configuration. Used for tests and offline tooling.
func WithEmbedder(embedder ai.Embedder) ServiceOption {
	return func(o *serviceOptions) {
		o.embedder = embedder
	}
}

// WithEventSink overrides where search events go.
func WithEventSink(sink search.EventSink) ServiceOption {
	return func(o *serviceOptions) {
		o.sink = sink
	}
}

// WithProgress writes rebuild progress to w.
func WithProgress(w io.Writer) ServiceOption {
	return func(o *serviceOptions) {
		o.progress = w
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService loads the dataset named by the configuration and assembles a
// search service around it. Call Bootstrap before serving searches.
func NewService(cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &serviceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	s := &Service{
		cfg:      cfg,
		embedder: options.embedder,
		sink:     options.sink,
		progress: options.progress,
		logger:   options.logger,
	}

	if s.embedder == nil {
		aiConfig := ai.NewConfig(
			ai.WithHost(cfg.Embedding.Host),
			ai.WithModel(cfg.Embedding.Model),
			ai.WithMaxTextRunes(cfg.Embedding.MaxTextRunes),
		)
		embedder, err := openai.NewEmbedder(aiConfig)
		if err != nil {
			return nil, fmt.Errorf("creating embedder: %w", err)
		}
		s.embedder = embedder
	}

	builder, err := reindex.NewBuilder(s.embedder, &reindex.Config{
		BatchSize:      cfg.Reindex.BatchSize,
		PoolSize:       cfg.Reindex.PoolSize,
		MaxRetries:     cfg.Reindex.MaxRetries,
		RetryDelay:     cfg.Reindex.RetryDelay,
		ReportInterval: cfg.Reindex.ReportInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("creating index builder: %w", err)
	}
	s.builder = builder

	if cfg.CacheDir != "" {
		backend, err := badger.OpenBackend(cfg.CacheDir, false)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("opening snapshot cache: %w", err)
		}
		s.snapshots = badger.NewSnapshotRepository(backend)
	}

	if s.sink == nil {
		if cfg.EventLog != "" {
			f, err := os.OpenFile(cfg.EventLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				s.Close()
				return nil, fmt.Errorf("opening event log: %w", err)
			}
			s.eventLog = f
			s.sink = search.NewWriterSink(f)
		} else {
			s.sink = search.NewLogSink(s.logger)
		}
	}

	store, engine, err := s.assemble()
	if err != nil {
		s.Close()
		return nil, err
	}
	s.store = store
	s.engine = engine

	return s, nil
}

// assemble loads the dataset file and builds an engine over it.
func (s *Service) assemble() (*corpus.Store, *search.Engine, error) {
	store, err := corpus.LoadFile(s.cfg.Dataset, corpus.WithLogger(s.logger))
	if err != nil {
		return nil, nil, fmt.Errorf("loading dataset: %w", err)
	}

	engineOpts := []search.Option{
		search.WithLogger(s.logger),
		search.WithEventSink(s.sink),
		search.WithModel(s.cfg.Embedding.Model),
		search.WithLowConfidenceThreshold(s.cfg.Search.LowConfidenceThreshold),
		search.WithFallbackCalibration(core.Calibration{
			AnchorLow:  s.cfg.Search.AnchorLow,
			AnchorHigh: s.cfg.Search.AnchorHigh,
		}),
	}
	if s.snapshots != nil {
		engineOpts = append(engineOpts, search.WithSnapshotStore(s.snapshots))
	}
	if s.progress != nil {
		engineOpts = append(engineOpts, search.WithProgress(s.progress))
	}

	engine, err := search.NewEngine(store, s.embedder, s.builder, engineOpts...)
	if err != nil {
		return nil, nil, err
	}
	return store, engine, nil
}

func (s *Service) currentEngine() *search.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

func (s *Service) currentStore() *corpus.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Bootstrap builds the initial index, loading a persisted snapshot when the
// dataset is unchanged since the last build.
func (s *Service) Bootstrap(ctx context.Context) (core.ReindexResult, error) {
	return s.currentEngine().Bootstrap(ctx)
}

// Search answers one query.
func (s *Service) Search(ctx context.Context, query core.SearchQuery) (*core.SearchResponse, error) {
	return s.currentEngine().Search(ctx, query)
}

// GetRecord returns the full record for an occupation code.
func (s *Service) GetRecord(code string) (*core.OccupationRecord, error) {
	return s.currentStore().Record(code)
}

// UpdateSynonyms applies synonym edits and, when configured, writes the
// dataset file back. Searches keep using the previous index until Reindex.
func (s *Service) UpdateSynonyms(updates []core.SynonymUpdate) (core.UpdateResult, error) {
	store := s.currentStore()
	result := store.ApplyUpdates(updates)

	if s.cfg.SaveBack && result.Updated > 0 {
		if err := store.SaveFile(s.cfg.Dataset); err != nil {
			return result, fmt.Errorf("saving dataset: %w", err)
		}
	}
	return result, nil
}

// Reindex re-embeds the corpus and swaps in the fresh index.
func (s *Service) Reindex(ctx context.Context) (core.ReindexResult, error) {
	return s.currentEngine().Reindex(ctx)
}

// Stats describes the current corpus and index.
func (s *Service) Stats() search.Stats {
	return s.currentEngine().Stats()
}

// Reload re-reads the dataset file, builds a fresh engine over it, and
// swaps it in. On any failure the previous engine keeps serving.
func (s *Service) Reload(ctx context.Context) (core.ReindexResult, error) {
	store, engine, err := s.assemble()
	if err != nil {
		return core.ReindexResult{}, err
	}

	result, err := engine.Bootstrap(ctx)
	if err != nil {
		return core.ReindexResult{}, fmt.Errorf("indexing reloaded dataset: %w", err)
	}

	s.mu.Lock()
	s.store = store
	s.engine = engine
	s.mu.Unlock()

	s.logger.Info("dataset reloaded", slog.Int("records", store.Len()))
	return result, nil
}

// Watch blocks, reloading the service whenever the dataset file changes,
// until the context is canceled.
func (s *Service) Watch(ctx context.Context) error {
	watcher, err := corpus.NewWatcher(s.cfg.Dataset, s.logger)
	if err != nil {
		return fmt.Errorf("watching dataset: %w", err)
	}

	go func() {
		<-ctx.Done()
		watcher.Close()
	}()

	watcher.Watch(func() {
		if _, err := s.Reload(ctx); err != nil {
			s.logger.Error("dataset reload failed", slog.Any("error", err))
		}
	})
	return nil
}

// Close releases the builder pool, snapshot cache, and event log.
func (s *Service) Close() error {
	if s.builder != nil {
		s.builder.Release()
	}

	var firstErr error
	if s.snapshots != nil {
		if err := s.snapshots.Close(); err != nil {
			s.logger.Error("error closing snapshot cache", "err", err)
			firstErr = err
		}
	}
	if s.eventLog != nil {
		if err := s.eventLog.Close(); err != nil {
			s.logger.Error("error closing event log", "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
