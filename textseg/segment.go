package textseg

import (
	"strings"

	"github.com/poiesic/simcheck/core"
)

const (
	// DefaultWindowSize is the nominal number of words per segment.
	DefaultWindowSize = 25

	// DefaultOverlap is the number of words shared between adjacent segments.
	DefaultOverlap = 5

	// minTailWords is the floor below which a remaining tail is folded
	// into one final short segment instead of a full window.
	minTailWords = 10
)

// Segmenter splits normalized text into overlapping fixed-size word
// windows. A Segmenter is immutable after construction and safe for
// concurrent use.
type Segmenter struct {
	window  int
	overlap int
}

// NewSegmenter creates a segmenter with the given window size and
// overlap. The overlap must be smaller than the window, otherwise the
// window could not advance.
func NewSegmenter(window, overlap int) (*Segmenter, error) {
	if window < 1 {
		return nil, ErrWindowTooSmall
	}
	if overlap < 0 || overlap >= window {
		return nil, ErrOverlapTooLarge
	}
	return &Segmenter{window: window, overlap: overlap}, nil
}

// WindowSize returns the nominal words per segment.
func (s *Segmenter) WindowSize() int { return s.window }

// Overlap returns the words shared between adjacent segments.
func (s *Segmenter) Overlap() int { return s.overlap }

// Segment normalizes text and splits it into word windows of the
// configured size, each window starting window-overlap words after the
// previous one. If fewer than minTailWords remain after a window, the
// remainder becomes one final short segment, so no tail text is ever
// dropped and no empty segment is produced. Empty input yields an
// empty slice. Segment IDs are 1-based in document order.
func (s *Segmenter) Segment(text string) []core.Segment {
	words := strings.Fields(Normalize(text))
	if len(words) == 0 {
		return nil
	}

	var segments []core.Segment
	id := 1
	step := s.window - s.overlap

	for i := 0; i < len(words); {
		end := i + s.window
		if end > len(words) {
			end = len(words)
		}
		segments = append(segments, core.Segment{
			ID:        id,
			Text:      strings.Join(words[i:end], " "),
			StartWord: i,
			EndWord:   end,
			WordCount: end - i,
		})
		id++
		i += step

		if len(words)-i < minTailWords {
			if i < len(words) {
				segments = append(segments, core.Segment{
					ID:        id,
					Text:      strings.Join(words[i:], " "),
					StartWord: i,
					EndWord:   len(words),
					WordCount: len(words) - i,
				})
			}
			break
		}
	}

	return segments
}
