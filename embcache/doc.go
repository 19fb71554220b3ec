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


// Package embcache provides the two embedding cache tiers and the
// strategy-chain embedder wrapper.
//
// The text tier is a process-wide LRU keyed by exact text; it serves
// snippet and query text that varies call to call. The segment tier is
// a per-detector FIFO ring; it serves segment texts that recur when a
// document is re-analyzed or fed into the corpus. Both are bounded,
// hold immutable vectors, and are never persisted.
package embcache
