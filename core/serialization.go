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

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types the storage layer persists. Field order
// is part of the on-disk format and must not change.

// IDMUS serializes IDs as varint-encoded uint64.
var IDMUS = idMUS{}

// CorpusEntryMUS serializes corpus entries.
var CorpusEntryMUS = corpusEntryMUS{}

var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type corpusEntryMUS struct{}

func (corpusEntryMUS) Marshal(entry CorpusEntry, bs []byte) int {
	n := ord.String.Marshal(entry.SourceID, bs)
	n += varint.Int.Marshal(entry.SegmentID, bs[n:])
	n += ord.String.Marshal(entry.Text, bs[n:])
	n += vectorMUS.Marshal(entry.Vector, bs[n:])
	return n
}

func (corpusEntryMUS) Unmarshal(bs []byte) (entry CorpusEntry, n int, err error) {
	var n1 int
	entry.SourceID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	entry.SegmentID, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	entry.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	entry.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (corpusEntryMUS) Size(entry CorpusEntry) int {
	return ord.String.Size(entry.SourceID) +
		varint.Int.Size(entry.SegmentID) +
		ord.String.Size(entry.Text) +
		vectorMUS.Size(entry.Vector)
}

func (corpusEntryMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = vectorMUS.Skip(bs[n:])
	n += n1
	return
}
