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


// Package corpus holds the in-memory occupation catalogue and its lifecycle:
// loading the enriched dataset at startup, applying operator synonym edits
// with partial-success semantics, recomputing searchable text, persisting
// edits back to disk, and watching the dataset file for external rewrites.
//
// Synonym edits never touch the vector index directly; they set a dirty flag
// and the stale index keeps serving searches until the next full reindex.
package corpus
