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


package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/udyoglabs/ncosearch/core"
	"github.com/udyoglabs/ncosearch/index"
	"github.com/udyoglabs/ncosearch/storage"
)

// entryWriteBatch bounds the number of entries written per transaction so
// large corpora stay under badger's transaction size limit.
const entryWriteBatch = 256

// SnapshotRepository implements storage.SnapshotStore for BadgerDB.
// Only the most recently saved snapshot is retained.
type SnapshotRepository struct {
	backend *Backend
}

var _ storage.SnapshotStore = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a SnapshotRepository over the backend.
// Closing the repository closes the backend.
func NewSnapshotRepository(backend *Backend) *SnapshotRepository {
	return &SnapshotRepository{
		backend: backend,
	}
}

// Save stores the snapshot under the fingerprint, dropping any previously
// stored snapshot first. Metadata is written last so an interrupted save
// leaves nothing loadable behind.
func (r *SnapshotRepository) Save(ctx context.Context, fingerprint core.Fingerprint, snapshot *storage.Snapshot) error {
	if err := r.deleteAll(); err != nil {
		return fmt.Errorf("clearing previous snapshot: %w", err)
	}

	dimensions := 0
	if len(snapshot.Entries) > 0 {
		dimensions = len(snapshot.Entries[0].Vector)
	}

	for start := 0; start < len(snapshot.Entries); start += entryWriteBatch {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+entryWriteBatch, len(snapshot.Entries))
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			for i := start; i < end; i++ {
				key := makeSnapshotEntryKey(fingerprint, i)
				if err := tx.Set(key, storage.MarshalSnapshotEntry(snapshot.Entries[i])); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return fmt.Errorf("writing snapshot entries: %w", err)
		}
	}

	meta := storage.MarshalSnapshotMeta(snapshot, len(snapshot.Entries), dimensions)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeSnapshotMetaKey(fingerprint), meta); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("writing snapshot metadata: %w", err)
	}
	return nil
}

// Load returns the snapshot stored for the fingerprint, or
// storage.ErrNotFound when no snapshot exists for it.
func (r *SnapshotRepository) Load(ctx context.Context, fingerprint core.Fingerprint) (*storage.Snapshot, error) {
	var (
		snapshot *storage.Snapshot
		count    int
	)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSnapshotMetaKey(fingerprint))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			snapshot, count, _, err = storage.UnmarshalSnapshotMeta(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}

	entries := make([]index.Entry, 0, count)
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialSnapshotEntryKey(fingerprint)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				entry, err := storage.UnmarshalSnapshotEntry(val)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	if len(entries) != count {
		return nil, fmt.Errorf("snapshot has %d entries, metadata says %d", len(entries), count)
	}

	snapshot.Entries = entries
	return snapshot, nil
}

// Close closes the underlying backend.
func (r *SnapshotRepository) Close() error {
	return r.backend.Close()
}

// deleteAll removes every stored snapshot key.
func (r *SnapshotRepository) deleteAll() error {
	for _, prefix := range []string{snapshotMetaPrefix + ":", snapshotEntryPrefix + ":"} {
		var keys [][]byte
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(prefix)
			opts.PrefetchValues = false
			iter := tx.NewIterator(opts)
			defer iter.Close()
			for iter.Rewind(); iter.Valid(); iter.Next() {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
			return nil
		}, false)
		if err != nil {
			return err
		}

		for start := 0; start < len(keys); start += entryWriteBatch {
			end := min(start+entryWriteBatch, len(keys))
			err := r.backend.WithTx(func(tx *badger.Txn) error {
				for _, key := range keys[start:end] {
					if err := tx.Delete(key); err != nil {
						return err
					}
				}
				return tx.Commit()
			}, true)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
