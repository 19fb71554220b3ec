package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// comparison. Implementations must be thread-safe for concurrent use and
// deterministic for a fixed model: the same text always embeds to the
// same vector.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times,
	// but must produce the same vectors as per-text calls.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
