package core

import "math"

// CosineSimilarity computes the cosine similarity between two vectors:
// (a·b) / (‖a‖‖b‖). The result is in [-1, 1] and is not clamped.
// Scores accumulate in float64 so report aggregates stay stable for
// large corpora even though vectors are stored as float32.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, ErrVectorMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, ErrZeroVector
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
