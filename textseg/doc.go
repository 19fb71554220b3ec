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


// Package textseg turns raw document text into the ordered word
// windows the rest of the system operates on.
//
// Normalization and segmentation are deterministic pure functions of
// their input: the same text always yields the same segments, which is
// what makes corpus queries and repeated analyses reproducible.
package textseg
