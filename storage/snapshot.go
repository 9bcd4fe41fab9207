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


package storage

import (
	"context"
	"time"

	"github.com/udyoglabs/ncosearch/core"
	"github.com/udyoglabs/ncosearch/index"
)

// Snapshot is a persisted copy of a built vector index together with the
// calibration measured at build time. Snapshots are keyed by the corpus
// fingerprint, so a snapshot is valid exactly as long as the corpus text
// and embedding model it was built from are unchanged.
type Snapshot struct {
	Model       string
	BuiltAt     time.Time
	Calibration core.Calibration
	Entries     []index.Entry
}

// SnapshotStore persists index snapshots between process runs.
type SnapshotStore interface {
	// Save stores the snapshot under the given corpus fingerprint,
	// replacing any snapshot previously stored for it.
	Save(ctx context.Context, fingerprint core.Fingerprint, snapshot *Snapshot) error

	// Load returns the snapshot stored for the fingerprint, or ErrNotFound
	// when no snapshot exists for it.
	Load(ctx context.Context, fingerprint core.Fingerprint) (*Snapshot, error)

	// Close releases the underlying resources.
	Close() error
}
