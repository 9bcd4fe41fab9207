// Package mock provides a test double for the ai.Embedder interface.
//
// Unlike a random stub, the default mock behavior preserves lexical overlap:
// texts that share tokens embed to nearby vectors. Engine-level tests rely
// on this to exercise ranking, confidence calibration and synonym reindex
// round-trips without an embedding service.
package mock
