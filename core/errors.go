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


package core

import "errors"

// Domain errors surfaced to callers of the retrieval engine.
var (
	// ErrEmptyQuery indicates a query that is empty after normalization.
	// Reported to the caller, never retried.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrUnknownCode indicates an occupation code not present in the corpus.
	ErrUnknownCode = errors.New("unknown occupation code")

	// ErrIndexNotReady indicates a search attempted before the first index
	// build completed. Surfaced as a service-unavailable condition.
	ErrIndexNotReady = errors.New("index not ready")

	// ErrReindexInProgress indicates a reindex was requested while another
	// one is still running. The caller may retry later.
	ErrReindexInProgress = errors.New("reindex already in progress")

	// ErrInvalidRecord indicates a dataset entry failed validation at load
	// time. Loading failure is fatal to startup, not recoverable per-record.
	ErrInvalidRecord = errors.New("invalid occupation record")

	// ErrDuplicateCode indicates two dataset entries share an occupation code.
	ErrDuplicateCode = errors.New("duplicate occupation code")
)
