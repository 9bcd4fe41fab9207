// Package reindex rebuilds the vector index from the current corpus state.
//
// There are no incremental vector updates: a rebuild re-embeds every live
// record's searchable text, batched across a worker pool with retry, and
// produces a brand-new index plus measured confidence calibration for the
// caller to swap in atomically. A failed build leaves the serving index
// untouched.
package reindex
