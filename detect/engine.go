package detect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/embcache"
	"github.com/poiesic/simcheck/textseg"
	"github.com/poiesic/simcheck/websearch"
)

const (
	// DefaultThreshold is the similarity score at or above which a
	// segment is labeled suspect.
	DefaultThreshold = 0.75

	// DefaultResultLimit is how many web results are requested per
	// segment query.
	DefaultResultLimit = 5

	// topMatches caps how many ranked candidates each segment result
	// retains.
	topMatches = 3
)

// Corpus is the local comparison pool the engine queries and feeds.
// *corpus.Store satisfies it.
type Corpus interface {
	Query(ctx context.Context, vector []float32) (*core.Candidate, error)
	Add(ctx context.Context, text, sourceID string) (int, error)
}

// Embedder produces vectors for segments and candidate snippets.
// *embcache.CachedEmbedder satisfies it.
type Embedder interface {
	EmbedAll(ctx context.Context, texts []string) ([][]float32, error)
	GetOrCompute(ctx context.Context, text string) ([]float32, error)
}

// Engine turns a document into a classified plagiarism report.
//
// Each handled document flows through the same stages: segment, embed,
// gather candidates, classify, aggregate. A failure in any one segment
// degrades that segment to original with a zero score instead of
// failing the document.
type Engine struct {
	segmenter   *textseg.Segmenter
	embedder    Embedder
	corpus      Corpus
	search      *websearch.Guard
	segments    *embcache.SegmentCache
	threshold   float64
	resultLimit int
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithThreshold sets the suspect threshold.
// Default is DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("%w: %g", ErrInvalidThreshold, threshold)
		}
		e.threshold = threshold
		return nil
	}
}

// WithResultLimit sets how many web results are requested per segment.
// Default is DefaultResultLimit.
func WithResultLimit(limit int) Option {
	return func(e *Engine) error {
		if limit > 0 {
			e.resultLimit = limit
		}
		return nil
	}
}

// WithSegmentCache sets the per-engine segment vector cache.
// Default is a cache of embcache.DefaultCapacity entries.
func WithSegmentCache(cache *embcache.SegmentCache) Option {
	return func(e *Engine) error {
		if cache != nil {
			e.segments = cache
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a detection engine. The search guard may wrap a nil
// provider, in which case web lookups are silently skipped.
func NewEngine(
	segmenter *textseg.Segmenter,
	embedder Embedder,
	corpus Corpus,
	search *websearch.Guard,
	opts ...Option,
) (*Engine, error) {
	if segmenter == nil {
		return nil, ErrSegmenterRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if corpus == nil {
		return nil, ErrCorpusRequired
	}
	if search == nil {
		search = websearch.NewGuard(nil)
	}

	cache, err := embcache.NewSegmentCache(embcache.DefaultCapacity)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		segmenter:   segmenter,
		embedder:    embedder,
		corpus:      corpus,
		search:      search,
		segments:    cache,
		threshold:   DefaultThreshold,
		resultLimit: DefaultResultLimit,
		logger:      slog.Default().With("component", "detect"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Threshold returns the engine's suspect threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Options selects candidate sources for a single Detect call.
//
// Web search and the local corpus are alternatives, not a blend: when
// UseSearch is set and the searcher yields results, the corpus is not
// consulted for that segment. The corpus only answers for segments the
// search produced nothing for, and only when UseCorpus is set.
type Options struct {
	// UseSearch enables web lookups for candidate passages.
	UseSearch bool

	// UseCorpus enables the local corpus as the fallback candidate
	// source for segments without search results.
	UseCorpus bool

	// AddToCorpus ingests the analyzed document into the corpus after
	// classification completes, so a document is never matched against
	// its own segments.
	AddToCorpus bool

	// SourceID labels the document when AddToCorpus is set. When
	// empty, an identifier is derived from the document content.
	SourceID string
}

// Detect analyzes a document and returns the classified report.
//
// The only hard failure is context cancellation. Embedding or lookup
// failures degrade the affected segments to original with a zero score
// and the document still completes.
func (e *Engine) Detect(ctx context.Context, text string, opts Options) (*core.Report, error) {
	segments := e.segmenter.Segment(text)
	if len(segments) == 0 {
		e.logger.Debug("document produced no segments")
		return buildReport(nil, e.threshold), nil
	}

	vectors := e.embedSegments(ctx, segments)

	results := make([]core.SegmentResult, 0, len(segments))
	for i, segment := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidates := e.gather(ctx, segment, opts)
		results = append(results, e.classify(ctx, segment, vectors[i], candidates, opts.UseCorpus))
	}

	report := buildReport(results, e.threshold)

	if opts.AddToCorpus {
		e.ingest(ctx, text, opts.SourceID)
	}

	return report, nil
}

// embedSegments resolves one vector per segment, preferring the segment
// cache, then a single batch call, then per-segment embedding. Segments
// that cannot be embedded get a nil vector.
func (e *Engine) embedSegments(ctx context.Context, segments []core.Segment) [][]float32 {
	vectors := make([][]float32, len(segments))

	var missed []int
	var texts []string
	for i, segment := range segments {
		if vector, ok := e.segments.Get(segment.Text); ok {
			vectors[i] = vector
			continue
		}
		missed = append(missed, i)
		texts = append(texts, segment.Text)
	}
	if len(missed) == 0 {
		return vectors
	}

	embedded, err := e.embedder.EmbedAll(ctx, texts)
	if err == nil {
		for j, i := range missed {
			vectors[i] = embedded[j]
			e.segments.Put(segments[i].Text, embedded[j])
		}
		return vectors
	}
	e.logger.Warn("batch embedding failed, embedding segments individually", "error", err)

	for _, i := range missed {
		vector, err := e.embedder.GetOrCompute(ctx, segments[i].Text)
		if err != nil {
			e.logger.Warn("segment embedding failed",
				"segment_id", segments[i].ID,
				"error", err)
			continue
		}
		vectors[i] = vector
		e.segments.Put(segments[i].Text, vector)
	}
	return vectors
}

// gather collects raw web candidates for a segment. Corpus fallback is
// handled later by classify, once it knows the search came up empty.
func (e *Engine) gather(ctx context.Context, segment core.Segment, opts Options) []core.Candidate {
	if !opts.UseSearch || !e.search.Enabled() {
		return nil
	}

	results := e.search.Search(ctx, segment.Text, e.resultLimit)
	if len(results) == 0 {
		return nil
	}

	candidates := make([]core.Candidate, 0, len(results))
	for _, result := range results {
		if result.Snippet == "" {
			continue
		}
		candidates = append(candidates, core.Candidate{
			Text:   result.Snippet,
			Origin: core.OriginSearch,
			URL:    result.URL,
			Title:  result.Title,
		})
	}
	return candidates
}

// ingest appends the analyzed document to the corpus. Failures are
// logged, never propagated, so ingestion cannot invalidate a report
// that has already been computed.
func (e *Engine) ingest(ctx context.Context, text, sourceID string) {
	if sourceID == "" {
		sourceID = fmt.Sprintf("doc-%016x", uint64(core.IDFromContent(text)))
	}

	count, err := e.corpus.Add(ctx, text, sourceID)
	if err != nil {
		e.logger.Warn("corpus ingestion failed",
			"source_id", sourceID,
			"error", err)
		return
	}
	e.logger.Info("document added to corpus",
		"source_id", sourceID,
		"segments", count)
}
