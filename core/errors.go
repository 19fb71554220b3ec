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

import "errors"

// Domain validation errors
var (
	// ErrInvalidSegment indicates a Segment failed validation.
	ErrInvalidSegment = errors.New("invalid segment")

	// ErrInvalidEntry indicates a CorpusEntry failed validation.
	ErrInvalidEntry = errors.New("invalid corpus entry")

	// ErrEmptyText indicates a text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptySourceID indicates the SourceID field is empty.
	ErrEmptySourceID = errors.New("source id cannot be empty")

	// ErrInvalidWindow indicates inconsistent word window bounds.
	ErrInvalidWindow = errors.New("word window bounds are inconsistent")

	// ErrVectorMismatch indicates two vectors cannot be compared.
	ErrVectorMismatch = errors.New("vector dimensions do not match")

	// ErrZeroVector indicates a vector with zero magnitude.
	ErrZeroVector = errors.New("vector has zero magnitude")
)
