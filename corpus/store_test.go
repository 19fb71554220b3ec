package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/simcheck/ai/mock"
	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/embcache"
	"github.com/poiesic/simcheck/textseg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "embeddinggemma"

func newTestStore(t *testing.T) (*Store, *mock.MockEmbedder) {
	t.Helper()

	embedder := mock.NewMockEmbedder()
	cached, err := embcache.NewCachedEmbedder(embedder, 256)
	require.NoError(t, err)

	segmenter, err := textseg.NewSegmenter(textseg.DefaultWindowSize, textseg.DefaultOverlap)
	require.NoError(t, err)

	store, err := NewStore(segmenter, cached, testModel)
	require.NoError(t, err)
	return store, embedder
}

func documentOfWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(words, " ")
}

func TestNewStore(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	cached, err := embcache.NewCachedEmbedder(embedder, 16)
	require.NoError(t, err)
	segmenter, err := textseg.NewSegmenter(25, 5)
	require.NoError(t, err)

	t.Run("valid configuration", func(t *testing.T) {
		store, err := NewStore(segmenter, cached, testModel)
		require.NoError(t, err)
		assert.NotNil(t, store)
		assert.Equal(t, testModel, store.Model())
	})

	t.Run("nil segmenter", func(t *testing.T) {
		_, err := NewStore(nil, cached, testModel)
		assert.ErrorIs(t, err, ErrSegmenterRequired)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewStore(segmenter, nil, testModel)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})
}

func TestStore_Add(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	added, err := store.Add(ctx, documentOfWords(30), "thesis-a")
	require.NoError(t, err)
	assert.Equal(t, 2, added, "30 words with window 25 overlap 5 yields 2 segments")
	assert.Equal(t, 2, store.Len())

	added, err = store.Add(ctx, documentOfWords(12), "thesis-b")
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 3, store.Len())
}

func TestStore_Add_EmptyText(t *testing.T) {
	store, _ := newTestStore(t)

	added, err := store.Add(context.Background(), "   ", "thesis-a")
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Zero(t, store.Len())
}

func TestStore_Add_EmptySourceID(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Add(context.Background(), documentOfWords(12), "")
	assert.ErrorIs(t, err, core.ErrEmptySourceID)
}

func TestStore_Add_EmbeddingFailure(t *testing.T) {
	store, embedder := newTestStore(t)
	failure := errors.New("embedding service down")
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, failure
	}
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, failure
	}

	_, err := store.Add(context.Background(), documentOfWords(12), "thesis-a")
	assert.ErrorIs(t, err, failure)
	assert.Zero(t, store.Len(), "failed add appends nothing")
}

func TestStore_Add_BatchFailureFallsBack(t *testing.T) {
	store, embedder := newTestStore(t)
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("batch endpoint unavailable")
	}

	added, err := store.Add(context.Background(), documentOfWords(30), "thesis-a")
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, store.Len())
}

func TestStore_Query_EmptyCorpus(t *testing.T) {
	store, _ := newTestStore(t)

	candidate, err := store.Query(context.Background(), []float32{1, 0})
	require.NoError(t, err)
	assert.Nil(t, candidate)
}

func TestStore_Query_IdenticalEmbedding(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	doc := documentOfWords(12)
	_, err := store.Add(ctx, doc, "thesis-a")
	require.NoError(t, err)

	// Query with the exact vector the mock produced for that segment text.
	vector := mock.DeterministicVector(doc, 384)
	candidate, err := store.Query(ctx, vector)
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.InDelta(t, 1.0, candidate.Similarity, 1e-6)
	assert.Equal(t, core.OriginCorpus, candidate.Origin)
	assert.Equal(t, "thesis-a", candidate.SourceID)
	assert.Equal(t, doc, candidate.Text)
}

func TestStore_Query_TieBreaksOnInsertionOrder(t *testing.T) {
	store, embedder := newTestStore(t)
	ctx := context.Background()

	// Every text embeds to the same vector, so every entry ties.
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0}
		}
		return vectors, nil
	}

	_, err := store.Add(ctx, documentOfWords(12), "first-source")
	require.NoError(t, err)
	_, err = store.Add(ctx, documentOfWords(12), "second-source")
	require.NoError(t, err)

	candidate, err := store.Query(ctx, []float32{1, 0})
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, "first-source", candidate.SourceID, "first inserted entry wins ties")
}

func TestStore_Query_SkipsUnusableVectors(t *testing.T) {
	store, embedder := newTestStore(t)
	ctx := context.Background()

	calls := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		vectors := make([][]float32, len(texts))
		for i := range texts {
			if calls == 1 {
				vectors[i] = []float32{0, 0} // zero magnitude, unusable
			} else {
				vectors[i] = []float32{0, 1}
			}
		}
		return vectors, nil
	}

	_, err := store.Add(ctx, documentOfWords(12), "broken-source")
	require.NoError(t, err)
	_, err = store.Add(ctx, "different words for the second corpus document here now", "good-source")
	require.NoError(t, err)

	candidate, err := store.Query(ctx, []float32{0, 1})
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, "good-source", candidate.SourceID)
}

func TestStore_AddIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	doc := documentOfWords(30)
	added, err := store.Add(ctx, doc, "thesis-a")
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	// Same document, same source: nothing new to add.
	added, err = store.Add(ctx, doc, "thesis-a")
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, 2, store.Len())

	// Same document under a different source is a new set of entries.
	added, err = store.Add(ctx, doc, "thesis-b")
	require.NoError(t, err)
	assert.Equal(t, 2, added)
}

func TestStore_Clear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, documentOfWords(30), "thesis-a")
	require.NoError(t, err)

	removed, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Zero(t, store.Len())

	removed, err = store.Clear(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed, "clearing an empty corpus removes nothing")
}

func TestStore_Info(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, documentOfWords(12), "small")
	require.NoError(t, err)
	_, err = store.Add(ctx, documentOfWords(50), "large")
	require.NoError(t, err)

	info := store.Info()
	require.Len(t, info, 2)
	assert.Equal(t, "large", info[0].SourceID, "largest source first")
	assert.Equal(t, "small", info[1].SourceID)
	assert.Equal(t, store.Len(), info[0].Segments+info[1].Segments)
}
