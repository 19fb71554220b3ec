package corpus

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/storage"
	"github.com/poiesic/simcheck/textseg"
)

// Embedder is the subset of embedding operations the store uses.
// *embcache.CachedEmbedder satisfies it.
type Embedder interface {
	// EmbedAll obtains one embedding per text, batch first with a
	// cached per-text fallback.
	EmbedAll(ctx context.Context, texts []string) ([][]float32, error)

	// GetOrCompute returns the embedding for a single text through the
	// memoized tier.
	GetOrCompute(ctx context.Context, text string) ([]float32, error)
}

// Store is the append-only local corpus: segments of previously
// ingested documents together with their embeddings, queried as the
// comparison pool when web search yields nothing.
//
// Entries keep insertion order. An append is atomic with respect to a
// concurrent query: a reader sees either the old corpus or the new one,
// never a partially appended batch.
type Store struct {
	mu          sync.RWMutex
	entries     []core.CorpusEntry
	seen        map[core.ID]struct{}
	segmenter   *textseg.Segmenter
	embedder    Embedder
	model       string
	repo        storage.CorpusRepository
	modelSynced bool
	logger      *slog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithRepository attaches a persistence backend. Every append is
// written through to the repository, Clear and Restore rewrite it, and
// LoadPersisted rebuilds the in-memory corpus from it.
func WithRepository(repo storage.CorpusRepository) Option {
	return func(s *Store) error {
		s.repo = repo
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates an empty corpus store. The model identifier names
// the embedding model producing the vectors; it is recorded in
// snapshots so a restore can tell whether stored vectors are usable.
func NewStore(segmenter *textseg.Segmenter, embedder Embedder, model string, opts ...Option) (*Store, error) {
	if segmenter == nil {
		return nil, ErrSegmenterRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Store{
		seen:      make(map[core.ID]struct{}),
		segmenter: segmenter,
		embedder:  embedder,
		model:     model,
		logger:    slog.Default().With("component", "corpus"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Model returns the embedding model identifier the store was built with.
func (s *Store) Model() string { return s.model }

// Add normalizes and segments text, embeds all segments, and appends
// one entry per segment. It returns the number of entries appended.
// Entries are built completely before the append, so a failed or
// retried Add never leaves partial duplicates behind; the embedding
// cache keeps vectors already computed by a failed attempt. Segments
// already in the corpus under the same source are skipped, so adding a
// document twice is a no-op.
func (s *Store) Add(ctx context.Context, text, sourceID string) (int, error) {
	if sourceID == "" {
		return 0, core.ErrEmptySourceID
	}

	segments := s.segmenter.Segment(text)
	if len(segments) == 0 {
		return 0, nil
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}

	vectors, err := s.embedder.EmbedAll(ctx, texts)
	if err != nil {
		return 0, err
	}

	entries := make([]core.CorpusEntry, len(segments))
	for i, seg := range segments {
		entries[i] = core.CorpusEntry{
			SourceID:  sourceID,
			SegmentID: seg.ID,
			Text:      seg.Text,
			Vector:    vectors[i],
		}
	}

	s.mu.Lock()
	fresh := entries[:0]
	for _, entry := range entries {
		id := core.IDFromEntry(entry.SourceID, entry.SegmentID, entry.Text)
		if _, dup := s.seen[id]; dup {
			continue
		}
		fresh = append(fresh, entry)
	}
	if err := s.persist(ctx, fresh); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	for _, entry := range fresh {
		s.seen[core.IDFromEntry(entry.SourceID, entry.SegmentID, entry.Text)] = struct{}{}
	}
	s.entries = append(s.entries, fresh...)
	total := len(s.entries)
	s.mu.Unlock()

	if len(fresh) < len(entries) {
		s.logger.Debug("skipped duplicate segments", "source", sourceID, "skipped", len(entries)-len(fresh))
	}
	s.logger.Debug("added document to corpus", "source", sourceID, "segments", len(fresh), "corpus_size", total)
	return len(fresh), nil
}

// persist writes entries through to the repository, recording the
// embedding model the first time. Callers must hold the write lock so
// repository order matches in-memory order. No-op without a repository.
func (s *Store) persist(ctx context.Context, entries []core.CorpusEntry) error {
	if s.repo == nil {
		return nil
	}
	if !s.modelSynced {
		if err := s.repo.SetModel(ctx, s.model); err != nil {
			return err
		}
		s.modelSynced = true
	}
	return s.repo.AppendEntries(ctx, entries...)
}

// Query compares a segment embedding against every corpus entry and
// returns the best match, or nil when the corpus is empty or no entry
// has a comparable vector. Ties break toward the earliest inserted
// entry, which keeps results deterministic for a fixed corpus state.
// Entries whose vectors cannot be compared are skipped.
func (s *Store) Query(ctx context.Context, vector []float32) (*core.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, nil
	}

	best := -1
	bestScore := 0.0
	for i := range s.entries {
		score, err := core.CosineSimilarity(vector, s.entries[i].Vector)
		if err != nil {
			s.logger.Warn("skipping corpus entry with unusable vector",
				"source", s.entries[i].SourceID, "segment", s.entries[i].SegmentID, "err", err)
			continue
		}
		if best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best == -1 {
		return nil, nil
	}

	entry := s.entries[best]
	return &core.Candidate{
		Text:       entry.Text,
		Similarity: bestScore,
		Origin:     core.OriginCorpus,
		SourceID:   entry.SourceID,
	}, nil
}

// Len returns the number of entries in the corpus.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes all entries, in memory and persisted, and returns how
// many were removed.
func (s *Store) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo != nil {
		if _, err := s.repo.Clear(ctx); err != nil {
			return 0, err
		}
		s.modelSynced = false
	}

	removed := len(s.entries)
	s.entries = nil
	s.seen = make(map[core.ID]struct{})
	return removed, nil
}

// LoadPersisted rebuilds the in-memory corpus from the attached
// repository. Entries persisted under a different embedding model are
// re-embedded and written back. Returns the number of entries loaded.
// No-op without a repository.
func (s *Store) LoadPersisted(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, nil
	}

	model, err := s.repo.Model(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}

	entries, err := s.repo.LoadEntries(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	snap := &Snapshot{Version: SnapshotVersion, Model: model, Entries: make([]SnapshotEntry, len(entries))}
	for i := range entries {
		snap.Entries[i] = SnapshotEntry{
			SourceID:  entries[i].SourceID,
			SegmentID: entries[i].SegmentID,
			Text:      entries[i].Text,
			Vector:    entries[i].Vector,
		}
	}
	return s.Restore(ctx, snap)
}

// SourceInfo summarizes one ingested source.
type SourceInfo struct {
	SourceID string
	Segments int
}

// Info returns per-source segment counts, largest first.
func (s *Store) Info() []SourceInfo {
	s.mu.RLock()
	counts := make(map[string]int)
	order := make([]string, 0)
	for i := range s.entries {
		id := s.entries[i].SourceID
		if _, seen := counts[id]; !seen {
			order = append(order, id)
		}
		counts[id]++
	}
	s.mu.RUnlock()

	info := make([]SourceInfo, 0, len(order))
	for _, id := range order {
		info = append(info, SourceInfo{SourceID: id, Segments: counts[id]})
	}
	sort.SliceStable(info, func(i, j int) bool {
		return info[i].Segments > info[j].Segments
	})
	return info
}
