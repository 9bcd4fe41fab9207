package corpus

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/udyoglabs/ncosearch/core"
	"github.com/udyoglabs/ncosearch/lang"
)

// Store is the in-memory catalogue of occupation records. It is read-mostly:
// concurrent searches read it freely while synonym edits take the exclusive
// write path. Codes are immutable once loaded and record order is the
// dataset's insertion order, which the vector index relies on for stable
// tie-breaking.
type Store struct {
	mu         sync.RWMutex
	records    []*core.OccupationRecord
	byCode     map[string]*core.OccupationRecord
	dirty      bool
	generation uint64
	logger     *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewStore builds a Store from loaded dataset records. Every record is
// validated and its searchable text recomputed; a malformed entry or a
// duplicate code fails the whole load, since a partially loaded corpus would
// silently serve wrong results.
func NewStore(records []*core.OccupationRecord, opts ...StoreOption) (*Store, error) {
	s := &Store{
		records: make([]*core.OccupationRecord, 0, len(records)),
		byCode:  make(map[string]*core.OccupationRecord, len(records)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for i, record := range records {
		if err := core.ValidateRecord(record); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, exists := s.byCode[record.Code]; exists {
			return nil, fmt.Errorf("%w: %s", core.ErrDuplicateCode, record.Code)
		}

		r := cloneRecord(record)
		r.Synonyms = dedupFold(r.Synonyms)
		r.SearchableText = BuildSearchableText(r)

		s.records = append(s.records, r)
		s.byCode[r.Code] = r
	}

	s.logger.Debug("corpus store loaded", "records", len(s.records))
	return s, nil
}

// Len returns the number of live records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Record returns a copy of the record with the given code, or
// core.ErrUnknownCode when absent.
func (s *Store) Record(code string) (*core.OccupationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownCode, code)
	}
	return cloneRecord(record), nil
}

// Records returns copies of all live records in insertion order.
func (s *Store) Records() []*core.OccupationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.OccupationRecord, len(s.records))
	for i, record := range s.records {
		out[i] = cloneRecord(record)
	}
	return out
}

// ApplyUpdates applies a batch of synonym edits. Valid entries are applied
// and invalid codes reported; the batch never aborts as a whole. Additions
// dedup case-insensitively against the existing set and removals match
// case-insensitively. Any change recomputes the record's searchable text and
// marks the index stale.
func (s *Store) ApplyUpdates(updates []core.SynonymUpdate) core.UpdateResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result core.UpdateResult
	for _, update := range updates {
		record, ok := s.byCode[update.Code]
		if !ok {
			result.InvalidCodes = append(result.InvalidCodes, update.Code)
			continue
		}

		if !applySynonymUpdate(record, update) {
			continue
		}

		record.SearchableText = BuildSearchableText(record)
		result.Updated++
		s.dirty = true
		s.generation++
		s.logger.Debug("synonyms updated", "code", update.Code,
			"added", len(update.Add), "removed", len(update.Remove))
	}

	result.RequiresReindex = s.dirty
	return result
}

// Dirty reports whether synonym edits have invalidated the vector index.
// Searches keep serving the stale index until the next reindex.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// MarkDirty flags the index as stale, e.g. after an external dataset edit.
func (s *Store) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
	s.generation++
}

// Generation returns a counter that advances on every edit invalidating the
// index. A rebuild captures it before reading records and passes it back to
// MarkClean, so edits that land mid-rebuild keep the stale flag set.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// MarkClean clears the stale flag after a successful reindex, unless edits
// have landed since the given generation was observed. Those edits are not
// in the new index and still need a reindex of their own.
func (s *Store) MarkClean(observed uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == observed {
		s.dirty = false
	}
}

// Fingerprint hashes the model name plus every record's code and searchable
// text, in order. Cached index snapshots keyed by this value are valid only
// for an identical corpus state.
func (s *Store) Fingerprint(model string) core.Fingerprint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	b.WriteString(model)
	for _, record := range s.records {
		b.WriteByte('\n')
		b.WriteString(record.Code)
		b.WriteByte('\x1f')
		b.WriteString(record.SearchableText)
	}
	return core.FingerprintFromContent(b.String())
}

// applySynonymUpdate mutates the record's synonym set and reports whether
// anything changed. Must be called with the write lock held.
func applySynonymUpdate(record *core.OccupationRecord, update core.SynonymUpdate) bool {
	changed := false

	existing := make(map[string]bool, len(record.Synonyms))
	for _, syn := range record.Synonyms {
		existing[strings.ToLower(syn)] = true
	}

	for _, syn := range update.Add {
		folded := strings.ToLower(strings.TrimSpace(syn))
		if folded == "" || existing[folded] {
			continue
		}
		record.Synonyms = append(record.Synonyms, strings.TrimSpace(syn))
		existing[folded] = true
		changed = true
	}

	if len(update.Remove) > 0 {
		remove := make(map[string]bool, len(update.Remove))
		for _, syn := range update.Remove {
			remove[strings.ToLower(strings.TrimSpace(syn))] = true
		}
		kept := record.Synonyms[:0]
		for _, syn := range record.Synonyms {
			if remove[strings.ToLower(syn)] {
				changed = true
				continue
			}
			kept = append(kept, syn)
		}
		record.Synonyms = kept
	}

	return changed
}

// BuildSearchableText derives the embedding text of a record: title,
// synonyms, examples and keywords concatenated and normalized.
func BuildSearchableText(record *core.OccupationRecord) string {
	parts := make([]string, 0, 1+len(record.Synonyms)+len(record.Examples)+len(record.Keywords))
	parts = append(parts, record.Title)
	parts = append(parts, record.Synonyms...)
	parts = append(parts, record.Examples...)
	parts = append(parts, record.Keywords...)
	return lang.Normalize(strings.Join(parts, " "))
}

// dedupFold removes case-insensitive duplicates preserving first occurrence.
func dedupFold(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		folded := strings.ToLower(v)
		if seen[folded] {
			continue
		}
		seen[folded] = true
		out = append(out, v)
	}
	return out
}

func cloneRecord(record *core.OccupationRecord) *core.OccupationRecord {
	r := *record
	r.Synonyms = slices.Clone(record.Synonyms)
	r.Examples = slices.Clone(record.Examples)
	r.Keywords = slices.Clone(record.Keywords)
	return &r
}
