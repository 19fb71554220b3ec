package detect

import (
	"context"
	"sort"

	"github.com/poiesic/simcheck/core"
)

// classify scores a segment against its candidates and labels it.
//
// A segment with no usable vector, no candidates, and no corpus answer
// is original with a zero score. Candidates that cannot be scored are
// logged and dropped from contention rather than poisoning the ranking.
func (e *Engine) classify(
	ctx context.Context,
	segment core.Segment,
	vector []float32,
	candidates []core.Candidate,
	useCorpus bool,
) core.SegmentResult {
	result := core.SegmentResult{
		Segment: segment,
		Label:   core.LabelOriginal,
	}

	if vector == nil {
		e.logger.Debug("segment has no embedding, defaulting to original",
			"segment_id", segment.ID)
		return result
	}

	if len(candidates) == 0 && useCorpus {
		candidates = e.corpusFallback(ctx, segment, vector)
	}
	if len(candidates) == 0 {
		return result
	}

	scored := e.score(ctx, segment, vector, candidates)
	if len(scored) == 0 {
		return result
	}

	// Stable sort keeps candidate arrival order on equal scores, so a
	// fixed input always produces the same ranking.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	best := scored[0]
	result.BestMatch = &best
	result.Similarity = best.Similarity
	if best.Similarity >= e.threshold {
		result.Label = core.LabelSuspect
	}

	top := len(scored)
	if top > topMatches {
		top = topMatches
	}
	result.TopMatches = append(result.TopMatches, scored[:top]...)

	return result
}

// corpusFallback asks the local corpus for a best match when the web
// produced nothing for a segment.
func (e *Engine) corpusFallback(ctx context.Context, segment core.Segment, vector []float32) []core.Candidate {
	candidate, err := e.corpus.Query(ctx, vector)
	if err != nil {
		e.logger.Warn("corpus query failed",
			"segment_id", segment.ID,
			"error", err)
		return nil
	}
	if candidate == nil {
		return nil
	}
	return []core.Candidate{*candidate}
}

// score fills in the similarity of each candidate against the segment
// vector. Corpus candidates arrive pre-scored and pass through.
func (e *Engine) score(
	ctx context.Context,
	segment core.Segment,
	vector []float32,
	candidates []core.Candidate,
) []core.Candidate {
	scored := make([]core.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Origin == core.OriginCorpus {
			scored = append(scored, candidate)
			continue
		}

		candidateVector, err := e.embedder.GetOrCompute(ctx, candidate.Text)
		if err != nil {
			e.logger.Warn("candidate embedding failed",
				"segment_id", segment.ID,
				"url", candidate.URL,
				"similarity", 0.0,
				"error", err)
			continue
		}

		similarity, err := core.CosineSimilarity(vector, candidateVector)
		if err != nil {
			e.logger.Warn("candidate not comparable",
				"segment_id", segment.ID,
				"url", candidate.URL,
				"similarity", 0.0,
				"error", err)
			continue
		}

		candidate.Similarity = similarity
		scored = append(scored, candidate)
	}
	return scored
}
