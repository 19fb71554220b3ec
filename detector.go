// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package simcheck

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/simcheck/ai"
	"github.com/poiesic/simcheck/ai/openai"
	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/corpus"
	"github.com/poiesic/simcheck/detect"
	"github.com/poiesic/simcheck/embcache"
	"github.com/poiesic/simcheck/extract"
	"github.com/poiesic/simcheck/ingest"
	"github.com/poiesic/simcheck/storage"
	"github.com/poiesic/simcheck/storage/badger"
	"github.com/poiesic/simcheck/textseg"
	"github.com/poiesic/simcheck/websearch"
)

// Detector bundles the segmenter, cached embedder, corpus, and
// detection engine behind one handle. It is the entry point for
// applications embedding the library.
type Detector struct {
	backend   *badger.Backend
	repo      storage.CorpusRepository
	embedder  *embcache.CachedEmbedder
	segmenter *textseg.Segmenter
	corpus    *corpus.Store
	engine    *detect.Engine
	logger    *slog.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*detectorOptions)

type detectorOptions struct {
	aiConfig  *ai.Config
	embedder  ai.Embedder
	searcher  websearch.Searcher
	threshold float64
	window    int
	overlap   int
	cacheSize int
	dataPath  string
}

// WithAIConfig sets the embedding service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DetectorOption {
	return func(o *detectorOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithEmbedder sets the embedder directly, bypassing the AI config.
// Mainly useful for tests.
func WithEmbedder(embedder ai.Embedder) DetectorOption {
	return func(o *detectorOptions) {
		o.embedder = embedder
	}
}

// WithSearcher sets the web search provider. Without one, detection
// runs on the local corpus alone.
func WithSearcher(searcher websearch.Searcher) DetectorOption {
	return func(o *detectorOptions) {
		o.searcher = searcher
	}
}

// WithThreshold sets the suspect threshold.
// Default is detect.DefaultThreshold.
func WithThreshold(threshold float64) DetectorOption {
	return func(o *detectorOptions) {
		o.threshold = threshold
	}
}

// WithSegmentation sets the segmenter window size and overlap.
// Defaults are textseg.DefaultWindowSize and textseg.DefaultOverlap.
func WithSegmentation(window, overlap int) DetectorOption {
	return func(o *detectorOptions) {
		o.window = window
		o.overlap = overlap
	}
}

// WithCacheCapacity sets the embedding cache capacity.
// Default is embcache.DefaultCapacity.
func WithCacheCapacity(capacity int) DetectorOption {
	return func(o *detectorOptions) {
		o.cacheSize = capacity
	}
}

// WithDataPath enables corpus persistence at the given directory. The
// persisted corpus is loaded on startup and kept in sync with every
// ingestion.
func WithDataPath(path string) DetectorOption {
	return func(o *detectorOptions) {
		o.dataPath = path
	}
}

// NewDetector creates a detector. Invalid configuration (a threshold
// outside [0, 1], an overlap not smaller than the window, a
// non-positive cache capacity) is rejected here rather than patched up.
func NewDetector(opts ...DetectorOption) (*Detector, error) {
	options := &detectorOptions{
		aiConfig:  ai.DefaultConfig(),
		threshold: detect.DefaultThreshold,
		window:    textseg.DefaultWindowSize,
		overlap:   textseg.DefaultOverlap,
		cacheSize: embcache.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(options)
	}

	segmenter, err := textseg.NewSegmenter(options.window, options.overlap)
	if err != nil {
		return nil, err
	}

	base := options.embedder
	if base == nil {
		base, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}
	cached, err := embcache.NewCachedEmbedder(base, options.cacheSize)
	if err != nil {
		return nil, err
	}

	d := &Detector{
		embedder:  cached,
		segmenter: segmenter,
		logger:    slog.Default().With("component", "detector"),
	}

	corpusOpts := []corpus.Option{}
	if options.dataPath != "" {
		backend, err := badger.OpenBackend(options.dataPath, false)
		if err != nil {
			return nil, err
		}
		repo, err := badger.NewCorpusRepository(backend)
		if err != nil {
			backend.Close()
			return nil, err
		}
		d.backend = backend
		d.repo = repo
		corpusOpts = append(corpusOpts, corpus.WithRepository(repo))
	}

	store, err := corpus.NewStore(segmenter, cached, options.aiConfig.EmbeddingModel, corpusOpts...)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.corpus = store

	if d.repo != nil {
		loaded, err := store.LoadPersisted(context.Background())
		if err != nil {
			d.Close()
			return nil, err
		}
		if loaded > 0 {
			d.logger.Info("corpus loaded from disk", "entries", loaded)
		}
	}

	// The configured capacity bounds both cache tiers: the shared text
	// LRU above and the engine's per-instance segment tier.
	segCache, err := embcache.NewSegmentCache(options.cacheSize)
	if err != nil {
		d.Close()
		return nil, err
	}
	engine, err := detect.NewEngine(segmenter, cached, store,
		websearch.NewGuard(options.searcher),
		detect.WithThreshold(options.threshold),
		detect.WithSegmentCache(segCache))
	if err != nil {
		d.Close()
		return nil, err
	}
	d.engine = engine

	return d, nil
}

// Close releases the persistence backend, if any.
func (d *Detector) Close() error {
	if d.repo != nil {
		if err := d.repo.Close(); err != nil {
			d.logger.Error("error closing corpus repository", "err", err)
		}
	}
	if d.backend != nil {
		if err := d.backend.Close(); err != nil {
			d.logger.Error("error closing backend storage", "err", err)
			return err
		}
	}
	return nil
}

// Detect analyzes a document and returns the classified report.
func (d *Detector) Detect(ctx context.Context, text string, opts detect.Options) (*core.Report, error) {
	return d.engine.Detect(ctx, text, opts)
}

// DetectFile extracts a document's text and analyzes it.
func (d *Detector) DetectFile(ctx context.Context, path string, opts detect.Options) (*core.Report, error) {
	text, err := extract.File(path)
	if err != nil {
		return nil, err
	}
	if opts.AddToCorpus && opts.SourceID == "" {
		opts.SourceID = filepath.Base(path)
	}
	return d.engine.Detect(ctx, text, opts)
}

// AddDocument ingests a document into the corpus and returns the
// number of segments added.
func (d *Detector) AddDocument(ctx context.Context, text, sourceID string) (int, error) {
	return d.corpus.Add(ctx, text, sourceID)
}

// AddFile extracts a document's text and ingests it into the corpus.
// An empty sourceID defaults to the file's base name.
func (d *Detector) AddFile(ctx context.Context, path, sourceID string) (int, error) {
	text, err := extract.File(path)
	if err != nil {
		return 0, err
	}
	if sourceID == "" {
		sourceID = filepath.Base(path)
	}
	return d.corpus.Add(ctx, text, sourceID)
}

// NewBuilder creates a corpus builder feeding this detector's corpus.
func (d *Detector) NewBuilder(opts ...ingest.Option) (*ingest.Builder, error) {
	return ingest.NewBuilder(d.corpus, opts...)
}

// CorpusSize returns the number of entries in the corpus.
func (d *Detector) CorpusSize() int {
	return d.corpus.Len()
}

// CorpusInfo returns per-source segment counts, largest first.
func (d *Detector) CorpusInfo() []corpus.SourceInfo {
	return d.corpus.Info()
}

// ClearCorpus removes every corpus entry, in memory and persisted.
func (d *Detector) ClearCorpus(ctx context.Context) (int, error) {
	return d.corpus.Clear(ctx)
}

// Threshold returns the configured suspect threshold.
func (d *Detector) Threshold() float64 {
	return d.engine.Threshold()
}

// SaveCorpus writes a portable JSON snapshot of the corpus to a file.
func (d *Detector) SaveCorpus(path string) error {
	data, err := d.corpus.Snapshot().Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCorpus replaces the corpus with the contents of a snapshot file.
// Returns the number of entries restored.
func (d *Detector) LoadCorpus(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	snap, err := corpus.UnmarshalSnapshot(data)
	if err != nil {
		return 0, err
	}
	return d.corpus.Restore(ctx, snap)
}
