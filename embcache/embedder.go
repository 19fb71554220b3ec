package embcache

import (
	"context"
	"log/slog"

	"github.com/poiesic/simcheck/ai"
)

// CachedEmbedder wraps an ai.Embedder with the memoized text tier and
// an explicit ordered chain of embedding strategies. It implements
// ai.Embedder itself so callers that do not care about caching can use
// it interchangeably. Caches are a per-process optimization only; they
// are never persisted and never part of correctness.
type CachedEmbedder struct {
	embedder ai.Embedder
	texts    *TextCache
	logger   *slog.Logger
}

// Option configures a CachedEmbedder.
type Option func(*CachedEmbedder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *CachedEmbedder) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewCachedEmbedder creates a cached embedder with the given text-tier
// capacity.
func NewCachedEmbedder(embedder ai.Embedder, capacity int, opts ...Option) (*CachedEmbedder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	texts, err := NewTextCache(capacity)
	if err != nil {
		return nil, err
	}

	e := &CachedEmbedder{
		embedder: embedder,
		texts:    texts,
		logger:   slog.Default().With("component", "cached-embedder"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// GetOrCompute returns the cached embedding for text, invoking the
// underlying embedder exactly once on a miss and storing the result
// before returning it.
func (e *CachedEmbedder) GetOrCompute(ctx context.Context, text string) ([]float32, error) {
	if vector, ok := e.texts.Get(text); ok {
		return vector, nil
	}

	vector, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	e.texts.Put(text, vector)
	return vector, nil
}

// EmbedText implements ai.Embedder via the memoized tier.
func (e *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.GetOrCompute(ctx, text)
}

// EmbedTexts implements ai.Embedder via the strategy chain.
func (e *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedAll(ctx, texts)
}

// embedStrategy is one way of obtaining embeddings for a batch of texts.
type embedStrategy struct {
	name string
	run  func(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedAll obtains one embedding per text. Strategies are tried in
// order with the first success short-circuiting: a single batch call
// first, then one-at-a-time through the cache. The cache keeps results
// computed by a partially successful fallback, so a retry never pays
// for them again. Batch and per-text embedding produce identical
// vectors, so the strategy taken never changes downstream results.
func (e *CachedEmbedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	strategies := []embedStrategy{
		{name: "batch", run: e.embedBatch},
		{name: "per-text", run: e.embedEach},
	}

	var lastErr error
	for _, strategy := range strategies {
		vectors, err := strategy.run(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		e.logger.Warn("embedding strategy failed", "strategy", strategy.name, "count", len(texts), "err", err)
		lastErr = err
	}

	return nil, lastErr
}

func (e *CachedEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, ErrBatchSizeMismatch
	}

	for i, text := range texts {
		e.texts.Put(text, vectors[i])
	}
	return vectors, nil
}

func (e *CachedEmbedder) embedEach(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := e.GetOrCompute(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// CacheLen returns the number of entries in the memoized text tier.
func (e *CachedEmbedder) CacheLen() int {
	return e.texts.Len()
}
