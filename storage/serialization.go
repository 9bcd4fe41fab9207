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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/udyoglabs/ncosearch/core"
	"github.com/udyoglabs/ncosearch/index"
)

// snapshotMeta is the wire form of everything in a Snapshot except the
// entries, which are stored under their own keys.
type snapshotMeta struct {
	Model      string
	BuiltAt    int64 // unix micro
	AnchorLow  float32
	AnchorHigh float32
	Count      int
	Dimensions int
}

var (
	snapshotMetaMUS  = snapshotMetaSer{}
	snapshotEntryMUS = snapshotEntrySer{}
)

type snapshotMetaSer struct{}

func (snapshotMetaSer) Marshal(m snapshotMeta, bs []byte) (n int) {
	n = ord.String.Marshal(m.Model, bs)
	n += varint.Int64.Marshal(m.BuiltAt, bs[n:])
	n += raw.Float32.Marshal(m.AnchorLow, bs[n:])
	n += raw.Float32.Marshal(m.AnchorHigh, bs[n:])
	n += varint.PositiveInt.Marshal(m.Count, bs[n:])
	n += varint.PositiveInt.Marshal(m.Dimensions, bs[n:])
	return
}

func (snapshotMetaSer) Unmarshal(bs []byte) (m snapshotMeta, n int, err error) {
	var n1 int
	if m.Model, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if m.BuiltAt, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if m.AnchorLow, n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if m.AnchorHigh, n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if m.Count, n1, err = varint.PositiveInt.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	m.Dimensions, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	return
}

func (snapshotMetaSer) Size(m snapshotMeta) (size int) {
	size = ord.String.Size(m.Model)
	size += varint.Int64.Size(m.BuiltAt)
	size += raw.Float32.Size(m.AnchorLow)
	size += raw.Float32.Size(m.AnchorHigh)
	size += varint.PositiveInt.Size(m.Count)
	size += varint.PositiveInt.Size(m.Dimensions)
	return
}

type snapshotEntrySer struct{}

func (snapshotEntrySer) Marshal(e index.Entry, bs []byte) (n int) {
	n = ord.String.Marshal(e.Code, bs)
	n += varint.PositiveInt.Marshal(len(e.Vector), bs[n:])
	for _, component := range e.Vector {
		n += raw.Float32.Marshal(component, bs[n:])
	}
	return
}

func (snapshotEntrySer) Unmarshal(bs []byte) (e index.Entry, n int, err error) {
	var n1 int
	if e.Code, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	var length int
	if length, n1, err = varint.PositiveInt.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	e.Vector = make([]float32, length)
	for i := range e.Vector {
		if e.Vector[i], n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += n1
	}
	return
}

func (snapshotEntrySer) Size(e index.Entry) (size int) {
	size = ord.String.Size(e.Code)
	size += varint.PositiveInt.Size(len(e.Vector))
	for _, component := range e.Vector {
		size += raw.Float32.Size(component)
	}
	return
}

// MarshalSnapshotMeta serializes snapshot metadata to bytes.
func MarshalSnapshotMeta(snapshot *Snapshot, count, dimensions int) []byte {
	m := snapshotMeta{
		Model:      snapshot.Model,
		BuiltAt:    snapshot.BuiltAt.UnixMicro(),
		AnchorLow:  snapshot.Calibration.AnchorLow,
		AnchorHigh: snapshot.Calibration.AnchorHigh,
		Count:      count,
		Dimensions: dimensions,
	}
	buf := make([]byte, snapshotMetaMUS.Size(m))
	snapshotMetaMUS.Marshal(m, buf)
	return buf
}

// UnmarshalSnapshotMeta deserializes snapshot metadata from bytes. The
// returned snapshot has no entries; count and dimensions describe the
// entries stored alongside it.
func UnmarshalSnapshotMeta(data []byte) (snapshot *Snapshot, count, dimensions int, err error) {
	m, _, err := snapshotMetaMUS.Unmarshal(data)
	if err != nil {
		return nil, 0, 0, err
	}
	snapshot = &Snapshot{
		Model:   m.Model,
		BuiltAt: time.UnixMicro(m.BuiltAt),
		Calibration: core.Calibration{
			AnchorLow:  m.AnchorLow,
			AnchorHigh: m.AnchorHigh,
		},
	}
	return snapshot, m.Count, m.Dimensions, nil
}

// MarshalSnapshotEntry serializes a single index entry to bytes.
func MarshalSnapshotEntry(entry index.Entry) []byte {
	buf := make([]byte, snapshotEntryMUS.Size(entry))
	snapshotEntryMUS.Marshal(entry, buf)
	return buf
}

// UnmarshalSnapshotEntry deserializes a single index entry from bytes.
func UnmarshalSnapshotEntry(data []byte) (index.Entry, error) {
	entry, _, err := snapshotEntryMUS.Unmarshal(data)
	return entry, err
}
