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

import (
	"fmt"
	"unicode/utf8"
)

// Bounds applied to search requests before they reach the engine.
const (
	// MaxQueryRunes caps raw query length; longer input is truncated rather
	// than rejected so over-length text never reaches the embedding provider.
	MaxQueryRunes = 500

	MinK     = 1
	MaxK     = 20
	DefaultK = 5
)

// ClampQuery bounds the fields of a SearchQuery in place.
//
// Rules:
//   - K defaults to DefaultK when zero and is clamped to [MinK, MaxK]
//   - Text is truncated to MaxQueryRunes runes
//   - an unsupported Language override is cleared (detection takes over)
func ClampQuery(q *SearchQuery) {
	if q.K == 0 {
		q.K = DefaultK
	}
	if q.K < MinK {
		q.K = MinK
	}
	if q.K > MaxK {
		q.K = MaxK
	}
	if utf8.RuneCountInString(q.Text) > MaxQueryRunes {
		runes := []rune(q.Text)
		q.Text = string(runes[:MaxQueryRunes])
	}
	if q.Language != "" && !SupportedLanguage(q.Language) {
		q.Language = ""
	}
}

// ValidateRecord validates a dataset entry according to domain rules.
//
// Validation rules:
//   - Code must not be empty
//   - Title must not be empty
//
// NOT validated (derived or informational):
//   - SearchableText (recomputed by the corpus store)
//   - QualityScore (informational, any value accepted)
func ValidateRecord(record *OccupationRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.Code == "" {
		return fmt.Errorf("%w: code is empty", ErrInvalidRecord)
	}

	if record.Title == "" {
		return fmt.Errorf("%w: record %q has no title", ErrInvalidRecord, record.Code)
	}

	return nil
}
