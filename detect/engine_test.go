package detect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/simcheck/ai/mock"
	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/embcache"
	"github.com/poiesic/simcheck/textseg"
	"github.com/poiesic/simcheck/websearch"
	searchmock "github.com/poiesic/simcheck/websearch/mock"
)

// fakeCorpus is a controllable Corpus for exercising the engine's
// fallback and ingestion paths without a real store.
type fakeCorpus struct {
	candidate *core.Candidate
	queryErr  error
	queries   int

	addedSourceIDs []string
	addedTexts     []string
	addErr         error
}

func (f *fakeCorpus) Query(ctx context.Context, vector []float32) (*core.Candidate, error) {
	f.queries++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.candidate, nil
}

func (f *fakeCorpus) Add(ctx context.Context, text, sourceID string) (int, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	f.addedSourceIDs = append(f.addedSourceIDs, sourceID)
	f.addedTexts = append(f.addedTexts, text)
	return len(strings.Fields(text)), nil
}

func documentOfWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i+1)
	}
	return strings.Join(words, " ")
}

func newTestEngine(t *testing.T, searcher websearch.Searcher, corpus Corpus, opts ...Option) (*Engine, *mock.MockEmbedder) {
	t.Helper()

	segmenter, err := textseg.NewSegmenter(textseg.DefaultWindowSize, textseg.DefaultOverlap)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	cached, err := embcache.NewCachedEmbedder(embedder, 64)
	require.NoError(t, err)

	engine, err := NewEngine(segmenter, cached, corpus, websearch.NewGuard(searcher), opts...)
	require.NoError(t, err)
	return engine, embedder
}

// stubVectors pins specific texts to specific vectors on both embedder
// paths. Unknown texts fall back to deterministic hashing.
func stubVectors(embedder *mock.MockEmbedder, vectors map[string][]float32) {
	lookup := func(text string) []float32 {
		if vector, ok := vectors[text]; ok {
			return vector
		}
		return mock.DeterministicVector(text, 4)
	}
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return lookup(text), nil
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = lookup(text)
		}
		return out, nil
	}
}

func TestNewEngine_Guards(t *testing.T) {
	segmenter, err := textseg.NewSegmenter(textseg.DefaultWindowSize, textseg.DefaultOverlap)
	require.NoError(t, err)
	cached, err := embcache.NewCachedEmbedder(mock.NewMockEmbedder(), 64)
	require.NoError(t, err)
	corpus := &fakeCorpus{}

	_, err = NewEngine(nil, cached, corpus, nil)
	assert.ErrorIs(t, err, ErrSegmenterRequired)

	_, err = NewEngine(segmenter, nil, corpus, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewEngine(segmenter, cached, nil, nil)
	assert.ErrorIs(t, err, ErrCorpusRequired)

	_, err = NewEngine(segmenter, cached, corpus, nil, WithThreshold(1.5))
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	engine, err := NewEngine(segmenter, cached, corpus, nil, WithThreshold(0.6))
	require.NoError(t, err)
	assert.InDelta(t, 0.6, engine.Threshold(), 1e-9)
}

func TestDetect_EmptyDocument(t *testing.T) {
	engine, _ := newTestEngine(t, nil, &fakeCorpus{})

	report, err := engine.Detect(context.Background(), "", Options{UseSearch: true, UseCorpus: true})
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalSegments)
	assert.Equal(t, 0, report.SuspectSegments)
	assert.Zero(t, report.SuspectPercentage)
	assert.Zero(t, report.AvgSimilarity)
	assert.InDelta(t, DefaultThreshold, report.Threshold, 1e-9)
}

func TestDetect_SuspectViaSearch(t *testing.T) {
	doc := documentOfWords(12)
	searcher := searchmock.NewMockSearcher()
	searcher.Results = []websearch.Result{
		{Title: "Known paper", Snippet: doc, URL: "https://example.org/paper", Source: "serper"},
	}
	corpus := &fakeCorpus{}
	engine, _ := newTestEngine(t, searcher, corpus)

	report, err := engine.Detect(context.Background(), doc, Options{UseSearch: true})
	require.NoError(t, err)

	require.Equal(t, 1, report.TotalSegments)
	assert.Equal(t, 1, report.SuspectSegments)
	assert.InDelta(t, 100.0, report.SuspectPercentage, 1e-9)

	result := report.Segments[0]
	assert.Equal(t, core.LabelSuspect, result.Label)
	require.NotNil(t, result.BestMatch)
	assert.Equal(t, core.OriginSearch, result.BestMatch.Origin)
	assert.Equal(t, "https://example.org/paper", result.BestMatch.URL)
	assert.InDelta(t, 1.0, result.Similarity, 1e-6)
}

func TestDetect_NoCandidateSourcesMeansOriginal(t *testing.T) {
	corpus := &fakeCorpus{candidate: &core.Candidate{Text: "x", Similarity: 0.99, Origin: core.OriginCorpus}}
	engine, _ := newTestEngine(t, nil, corpus)

	report, err := engine.Detect(context.Background(), documentOfWords(12), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalSegments)
	assert.Equal(t, 0, report.SuspectSegments)
	assert.Equal(t, 1, report.OriginalSegments)
	assert.Zero(t, report.AvgSimilarity)
	assert.Equal(t, 0, corpus.queries, "corpus must stay untouched unless enabled")
}

func TestDetect_SearchResultsSuppressCorpus(t *testing.T) {
	doc := documentOfWords(12)
	searcher := searchmock.NewMockSearcher()
	searcher.Results = []websearch.Result{{Snippet: doc, URL: "https://example.org"}}
	corpus := &fakeCorpus{candidate: &core.Candidate{Text: "y", Similarity: 0.9, Origin: core.OriginCorpus}}
	engine, _ := newTestEngine(t, searcher, corpus)

	report, err := engine.Detect(context.Background(), doc, Options{UseSearch: true, UseCorpus: true})
	require.NoError(t, err)

	assert.Equal(t, 0, corpus.queries, "search hits must preempt corpus lookup")
	assert.Equal(t, core.OriginSearch, report.Segments[0].BestMatch.Origin)
}

func TestDetect_CorpusFallbackWhenSearchEmpty(t *testing.T) {
	searcher := searchmock.NewMockSearcher() // no results
	corpus := &fakeCorpus{candidate: &core.Candidate{
		Text:       "archived thesis passage",
		Similarity: 0.91,
		Origin:     core.OriginCorpus,
		SourceID:   "thesis-a",
	}}
	engine, _ := newTestEngine(t, searcher, corpus)

	report, err := engine.Detect(context.Background(), documentOfWords(12), Options{UseSearch: true, UseCorpus: true})
	require.NoError(t, err)

	assert.Equal(t, 1, corpus.queries)
	result := report.Segments[0]
	assert.Equal(t, core.LabelSuspect, result.Label)
	require.NotNil(t, result.BestMatch)
	assert.Equal(t, core.OriginCorpus, result.BestMatch.Origin)
	assert.Equal(t, "thesis-a", result.BestMatch.SourceID)
	assert.InDelta(t, 0.91, result.Similarity, 1e-9)
}

func TestDetect_CorpusQueryFailureDegradesToOriginal(t *testing.T) {
	corpus := &fakeCorpus{queryErr: errors.New("store offline")}
	engine, _ := newTestEngine(t, nil, corpus)

	report, err := engine.Detect(context.Background(), documentOfWords(12), Options{UseCorpus: true})
	require.NoError(t, err)
	assert.Equal(t, core.LabelOriginal, report.Segments[0].Label)
	assert.Zero(t, report.Segments[0].Similarity)
}

func TestDetect_FailedCandidateDroppedFromContention(t *testing.T) {
	doc := documentOfWords(12)
	searcher := searchmock.NewMockSearcher()
	searcher.Results = []websearch.Result{
		{Snippet: "broken snippet", URL: "https://bad.example.org"},
		{Snippet: doc, URL: "https://good.example.org"},
	}
	engine, embedder := newTestEngine(t, searcher, &fakeCorpus{})

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if text == "broken snippet" {
			return nil, errors.New("embedding service hiccup")
		}
		return mock.DeterministicVector(text, 384), nil
	}

	report, err := engine.Detect(context.Background(), doc, Options{UseSearch: true})
	require.NoError(t, err)

	result := report.Segments[0]
	require.NotNil(t, result.BestMatch)
	assert.Equal(t, "https://good.example.org", result.BestMatch.URL)
	assert.InDelta(t, 1.0, result.Similarity, 1e-6)
	assert.Len(t, result.TopMatches, 1)
}

func TestDetect_AllEmbeddingsFailDocumentCompletes(t *testing.T) {
	doc := documentOfWords(12)
	searcher := searchmock.NewMockSearcher()
	searcher.Results = []websearch.Result{{Snippet: doc, URL: "https://example.org"}}
	engine, embedder := newTestEngine(t, searcher, &fakeCorpus{})

	embedFailure := errors.New("embedding service down")
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, embedFailure
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, embedFailure
	}

	report, err := engine.Detect(context.Background(), doc, Options{UseSearch: true})
	require.NoError(t, err)

	require.Equal(t, 1, report.TotalSegments)
	result := report.Segments[0]
	assert.Equal(t, core.LabelOriginal, result.Label)
	assert.Zero(t, result.Similarity)
	assert.Nil(t, result.BestMatch)
}

func TestDetect_TopMatchesCappedAndRanked(t *testing.T) {
	doc := documentOfWords(12)
	searcher := searchmock.NewMockSearcher()
	searcher.Results = []websearch.Result{
		{Snippet: "far", URL: "https://example.org/far"},
		{Snippet: "close", URL: "https://example.org/close"},
		{Snippet: "exact", URL: "https://example.org/exact"},
		{Snippet: "near", URL: "https://example.org/near"},
	}
	engine, embedder := newTestEngine(t, searcher, &fakeCorpus{})

	segmentText := strings.Fields(doc) // normalized doc is one segment
	stubVectors(embedder, map[string][]float32{
		strings.Join(segmentText, " "): {1, 0},
		"exact":                        {1, 0},
		"close":                        {0.8, 0.6},
		"near":                         {0.6, 0.8},
		"far":                          {0, 1},
	})

	report, err := engine.Detect(context.Background(), doc, Options{UseSearch: true})
	require.NoError(t, err)

	result := report.Segments[0]
	require.Len(t, result.TopMatches, 3)
	assert.Equal(t, "https://example.org/exact", result.TopMatches[0].URL)
	assert.Equal(t, "https://example.org/close", result.TopMatches[1].URL)
	assert.Equal(t, "https://example.org/near", result.TopMatches[2].URL)
	require.NotNil(t, result.BestMatch)
	assert.Equal(t, "https://example.org/exact", result.BestMatch.URL)
	assert.InDelta(t, 1.0, result.Similarity, 1e-6)
}

func TestDetect_AggregationRounding(t *testing.T) {
	doc := documentOfWords(50) // three segments at the default window
	searcher := searchmock.NewMockSearcher()
	searcher.Results = []websearch.Result{{Snippet: "reference passage", URL: "https://example.org/ref"}}
	engine, embedder := newTestEngine(t, searcher, &fakeCorpus{})

	segmenter, err := textseg.NewSegmenter(textseg.DefaultWindowSize, textseg.DefaultOverlap)
	require.NoError(t, err)
	segments := segmenter.Segment(doc)
	require.Len(t, segments, 3)

	// Only the first segment matches the reference passage.
	stubVectors(embedder, map[string][]float32{
		segments[0].Text:    {1, 0},
		segments[1].Text:    {0, 1},
		segments[2].Text:    {0, 1},
		"reference passage": {1, 0},
	})

	report, err := engine.Detect(context.Background(), doc, Options{UseSearch: true})
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalSegments)
	assert.Equal(t, 1, report.SuspectSegments)
	assert.Equal(t, 2, report.OriginalSegments)
	assert.InDelta(t, 33.33, report.SuspectPercentage, 1e-9)
	assert.InDelta(t, 0.3333, report.AvgSimilarity, 1e-9)
}

func TestDetect_AddToCorpusHappensAfterClassification(t *testing.T) {
	doc := documentOfWords(12)
	corpus := &fakeCorpus{}
	engine, _ := newTestEngine(t, nil, corpus)

	report, err := engine.Detect(context.Background(), doc, Options{UseCorpus: true, AddToCorpus: true, SourceID: "submission-1"})
	require.NoError(t, err)

	// The document was classified against the pre-ingestion corpus, so
	// it cannot have matched its own segments.
	assert.Equal(t, 0, report.SuspectSegments)
	require.Len(t, corpus.addedSourceIDs, 1)
	assert.Equal(t, "submission-1", corpus.addedSourceIDs[0])
	assert.Equal(t, doc, corpus.addedTexts[0])
}

func TestDetect_AddToCorpusDerivesSourceID(t *testing.T) {
	corpus := &fakeCorpus{}
	engine, _ := newTestEngine(t, nil, corpus)

	_, err := engine.Detect(context.Background(), documentOfWords(12), Options{AddToCorpus: true})
	require.NoError(t, err)

	require.Len(t, corpus.addedSourceIDs, 1)
	assert.True(t, strings.HasPrefix(corpus.addedSourceIDs[0], "doc-"))
}

func TestDetect_IngestionFailureDoesNotFailReport(t *testing.T) {
	corpus := &fakeCorpus{addErr: errors.New("disk full")}
	engine, _ := newTestEngine(t, nil, corpus)

	report, err := engine.Detect(context.Background(), documentOfWords(12), Options{AddToCorpus: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalSegments)
}

func TestDetect_SegmentCacheAvoidsReembedding(t *testing.T) {
	doc := documentOfWords(12)
	engine, embedder := newTestEngine(t, nil, &fakeCorpus{})

	_, err := engine.Detect(context.Background(), doc, Options{})
	require.NoError(t, err)
	calls := embedder.CallCount()
	assert.Equal(t, 1, calls, "one batch call for the first pass")

	_, err = engine.Detect(context.Background(), doc, Options{})
	require.NoError(t, err)
	assert.Equal(t, calls, embedder.CallCount(), "repeat document must be served from the segment cache")
}

func TestDetect_ContextCancellation(t *testing.T) {
	engine, _ := newTestEngine(t, nil, &fakeCorpus{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Detect(ctx, documentOfWords(12), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetect_CustomThresholdChangesLabel(t *testing.T) {
	doc := documentOfWords(12)
	searcher := searchmock.NewMockSearcher()
	searcher.Results = []websearch.Result{{Snippet: "related passage", URL: "https://example.org"}}
	engine, embedder := newTestEngine(t, searcher, &fakeCorpus{}, WithThreshold(0.5))

	segmentVector := []float32{1, 0}
	stubVectors(embedder, map[string][]float32{
		strings.Join(strings.Fields(doc), " "): segmentVector,
		"related passage":                      {0.8, 0.6}, // cosine 0.8
	})

	report, err := engine.Detect(context.Background(), doc, Options{UseSearch: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.SuspectSegments)
	assert.InDelta(t, 0.8, report.Segments[0].Similarity, 1e-6)
}
