// Package storage defines persistence for built index snapshots. A snapshot
// records the embedded vectors and the calibration measured when they were
// built, keyed by a fingerprint of the corpus text and embedding model, so
// a restart with an unchanged corpus can skip re-embedding entirely.
//
// The badger subpackage provides the durable implementation.
package storage
