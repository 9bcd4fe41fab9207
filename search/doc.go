// Package search implements the retrieval engine: it turns a raw query into
// a ranked, confidence-scored list of occupation codes.
//
// A query is normalized, its language detected from script, embedded, and
// matched against an exact flat cosine index. Raw similarities are mapped to
// calibrated confidences in [0,1]; responses whose best confidence falls
// below a threshold are flagged low-confidence rather than suppressed.
// Matched synonyms are attributed per result for display only.
//
// The engine serves searches lock-free from an atomically swapped index
// snapshot, so rebuilds never pause retrieval.
package search
