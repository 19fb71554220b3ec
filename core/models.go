package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for persisted corpus entries.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	return idFromBytes([]byte(text))
}

// IDFromEntry generates a deterministic ID for a corpus entry from its
// source and segment coordinates. (SourceID, SegmentID) identifies a
// segment within its source, so the pair plus text hashes to a stable key.
func IDFromEntry(sourceID string, segmentID int, text string) ID {
	buf := make([]byte, 0, len(sourceID)+len(text)+10)
	buf = append(buf, sourceID...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(segmentID))
	buf = append(buf, text...)
	return idFromBytes(buf)
}

func idFromBytes(data []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Label classifies a segment after matching.
type Label int

const (
	// LabelOriginal marks a segment with no match at or above the threshold.
	LabelOriginal Label = iota + 1
	// LabelSuspect marks a segment whose best match met the threshold.
	LabelSuspect
)

// String returns the label name used in reports.
func (l Label) String() string {
	switch l {
	case LabelOriginal:
		return "original"
	case LabelSuspect:
		return "suspect"
	default:
		return "unknown"
	}
}

// Origin identifies where a candidate came from.
type Origin int

const (
	// OriginSearch marks a candidate drawn from web search snippets.
	OriginSearch Origin = iota + 1
	// OriginCorpus marks a candidate drawn from the local corpus.
	OriginCorpus
)

// String returns the origin name used in reports.
func (o Origin) String() string {
	switch o {
	case OriginSearch:
		return "search"
	case OriginCorpus:
		return "corpus"
	default:
		return "unknown"
	}
}

// Segment is a contiguous word window of a document produced by the
// segmenter. IDs are 1-based and sequential in document order.
// Invariant: EndWord - StartWord == WordCount.
type Segment struct {
	ID        int
	Text      string
	StartWord int
	EndWord   int
	WordCount int
}

// CorpusEntry is one segment of a previously ingested document,
// held in the local corpus together with its embedding.
type CorpusEntry struct {
	SourceID  string
	SegmentID int
	Text      string
	Vector    []float32
}

// Candidate is a piece of reference text compared against a segment,
// together with the similarity computed for it. Candidates are
// transient; they live only inside a detection result.
type Candidate struct {
	Text       string
	Similarity float64
	Origin     Origin
	URL        string
	SourceID   string
	Title      string
}

// SegmentResult is the classification outcome for a single segment.
type SegmentResult struct {
	Segment    Segment
	BestMatch  *Candidate
	Similarity float64
	Label      Label
	TopMatches []Candidate // at most three, best first
}

// Report aggregates the per-segment results for one document.
// It is computed once per detection call and never mutated afterwards.
type Report struct {
	TotalSegments     int
	SuspectSegments   int
	OriginalSegments  int
	SuspectPercentage float64 // rounded to 2 decimal places
	AvgSimilarity     float64 // rounded to 4 decimal places
	Threshold         float64
	Segments          []SegmentResult
}
