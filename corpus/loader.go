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


package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/udyoglabs/ncosearch/core"
)

// LoadFile reads the enriched occupation dataset produced by the offline
// curation pipeline. The dataset is the engine's immutable input artifact;
// a malformed entry or duplicate code is fatal to startup, not recoverable
// per-record.
func LoadFile(path string, opts ...StoreOption) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	store, err := LoadReader(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", path, err)
	}
	return store, nil
}

// LoadReader decodes a JSON array of occupation records and builds a Store.
func LoadReader(r io.Reader, opts ...StoreOption) (*Store, error) {
	var records []*core.OccupationRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	return NewStore(records, opts...)
}

// SaveFile writes the current corpus state back to disk so operator synonym
// edits survive a restart. The write goes through a temp file and rename to
// never leave a truncated dataset behind.
func (s *Store) SaveFile(path string) error {
	records := s.Records()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing dataset: %w", err)
	}
	return nil
}
