package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udyoglabs/ncosearch/core"
	"github.com/udyoglabs/ncosearch/index"
)

func TestSnapshotMetaRoundTrip(t *testing.T) {
	built := time.Date(2025, 6, 14, 9, 30, 0, 123456000, time.UTC)
	snapshot := &Snapshot{
		Model:       "multilingual-e5-small",
		BuiltAt:     built,
		Calibration: core.Calibration{AnchorLow: 0.62, AnchorHigh: 0.91},
	}

	data := MarshalSnapshotMeta(snapshot, 3600, 384)
	decoded, count, dimensions, err := UnmarshalSnapshotMeta(data)
	require.NoError(t, err)

	assert.Equal(t, snapshot.Model, decoded.Model)
	assert.True(t, decoded.BuiltAt.Equal(built))
	assert.Equal(t, snapshot.Calibration, decoded.Calibration)
	assert.Equal(t, 3600, count)
	assert.Equal(t, 384, dimensions)
}

func TestSnapshotEntryRoundTrip(t *testing.T) {
	entry := index.Entry{
		Code:   "7231.0100",
		Vector: []float32{0.25, -0.5, 0.125, 1},
	}

	decoded, err := UnmarshalSnapshotEntry(MarshalSnapshotEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestUnmarshalTruncatedData(t *testing.T) {
	data := MarshalSnapshotEntry(index.Entry{Code: "0001", Vector: []float32{1, 2}})
	_, err := UnmarshalSnapshotEntry(data[:len(data)-3])
	assert.Error(t, err)
}
