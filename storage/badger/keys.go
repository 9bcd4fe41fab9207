package badger

import (
	"encoding/binary"

	"github.com/udyoglabs/ncosearch/core"
)

// Key prefixes for snapshot data
const (
	snapshotMetaPrefix  = "snapmeta"
	snapshotEntryPrefix = "snapent"
)

// makeSnapshotMetaKey generates the metadata key for a corpus fingerprint.
func makeSnapshotMetaKey(fingerprint core.Fingerprint) []byte {
	prefix := snapshotMetaPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(fingerprint))
	return buf
}

// makeSnapshotEntryKey generates a composite key for one index entry.
// Format: prefix:fingerprint:position
func makeSnapshotEntryKey(fingerprint core.Fingerprint, position int) []byte {
	prefix := snapshotEntryPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort preserves position order
	binary.BigEndian.PutUint64(buf[offset:], uint64(fingerprint))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(position))
	return buf
}

// makePartialSnapshotEntryKey generates the entry prefix for one fingerprint.
func makePartialSnapshotEntryKey(fingerprint core.Fingerprint) []byte {
	prefix := snapshotEntryPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(fingerprint))
	return buf
}
