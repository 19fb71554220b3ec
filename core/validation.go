// Copyright 2025 Poiesic Systems
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

import "fmt"

// ValidateSegment validates a Segment according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - ID must be positive (IDs are 1-based)
//   - EndWord - StartWord must equal WordCount
//
// NOT validated:
//   - WordCount against the nominal window size (the final segment
//     of a document may be shorter)
func ValidateSegment(segment *Segment) error {
	if segment == nil {
		return fmt.Errorf("%w: segment is nil", ErrInvalidSegment)
	}

	if segment.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSegment, ErrEmptyText)
	}

	if segment.ID < 1 {
		return fmt.Errorf("%w: id %d is not positive", ErrInvalidSegment, segment.ID)
	}

	if segment.EndWord-segment.StartWord != segment.WordCount {
		return fmt.Errorf("%w: %w: [%d:%d] with count %d",
			ErrInvalidSegment, ErrInvalidWindow,
			segment.StartWord, segment.EndWord, segment.WordCount)
	}

	return nil
}

// ValidateCorpusEntry validates a CorpusEntry according to domain rules.
//
// Validation rules:
//   - SourceID must not be empty
//   - Text must not be empty
//
// NOT validated:
//   - Vector (empty vectors are re-embedded on snapshot restore)
func ValidateCorpusEntry(entry *CorpusEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.SourceID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptySourceID)
	}

	if entry.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyText)
	}

	return nil
}
