package ingest

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Corpus is the destination for ingested documents.
// *corpus.Store satisfies it.
type Corpus interface {
	Add(ctx context.Context, text, sourceID string) (int, error)
}

// Document is one unit of corpus input.
type Document struct {
	SourceID string
	Text     string
}

// Result records the outcome for one ingested document.
type Result struct {
	SourceID string
	Segments int
	Err      error
}

// Builder ingests batches of documents into a corpus using a worker
// pool. Each document is segmented and embedded independently, so slow
// embedding calls for one document do not serialize the whole batch.
type Builder struct {
	corpus Corpus
	pool   *ants.Pool
	logger *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithPoolSize sets the worker pool size for concurrent ingestion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if b.pool != nil {
			b.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		b.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates a corpus builder.
func NewBuilder(corpus Corpus, opts ...Option) (*Builder, error) {
	if corpus == nil {
		return nil, ErrCorpusRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		corpus: corpus,
		pool:   pool,
		logger: slog.Default().With("component", "ingest"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(b); err != nil {
			b.Release()
			return nil, err
		}
	}

	return b, nil
}

// Build ingests every document and waits for the batch to finish.
// Failed documents are reported in their Result and do not stop the
// rest of the batch. Results are returned in input order.
func (b *Builder) Build(ctx context.Context, documents []Document) []Result {
	results := make([]Result, len(documents))

	var wg sync.WaitGroup
	for i, document := range documents {
		results[i].SourceID = document.SourceID

		if document.Text == "" {
			results[i].Err = ErrEmptyDocument
			continue
		}

		wg.Add(1)
		err := b.pool.Submit(func() {
			defer wg.Done()
			segments, err := b.corpus.Add(ctx, document.Text, document.SourceID)
			if err != nil {
				b.logger.Warn("document ingestion failed",
					"source_id", document.SourceID,
					"error", err)
				results[i].Err = err
				return
			}
			results[i].Segments = segments
		})
		if err != nil {
			wg.Done()
			results[i].Err = err
		}
	}
	wg.Wait()

	return results
}

// Release releases the worker pool.
// The builder should not be used after calling Release.
func (b *Builder) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}
