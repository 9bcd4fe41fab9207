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


// Package ai provides the embedding abstraction used by the retrieval engine.
//
// The Embedder interface is deliberately asymmetric: EmbedQuery and
// EmbedDocuments frame text differently because the multilingual E5 model
// family requires a "query: " prefix for search text and a "passage: "
// prefix for stored documents. The rest of the engine depends only on the
// interface, never on a concrete provider.
//
// # Implementation Packages
//
//   - ai/openai: production implementation against OpenAI-compatible APIs
//   - ai/mock: deterministic test double with no external dependencies
//
// Public constructors (openai.NewEmbedder) return the ai.Embedder INTERFACE
// to enforce abstraction. Test utility constructors (mock.NewEmbedder) return
// the CONCRETE type so tests can inject behavior and assert call counts.
package ai
