package storage

import (
	"context"

	"github.com/poiesic/simcheck/core"
)

// CorpusRepository persists the corpus of known documents so a detector
// can rebuild its comparison pool across restarts. Entries are
// append-only; the only ways to remove anything are Clear and
// ReplaceEntries.
// Implementations must be thread-safe and support concurrent access.
type CorpusRepository interface {
	// AppendEntries persists entries in the order given. Load returns
	// them in the same order, after any previously appended entries.
	AppendEntries(ctx context.Context, entries ...core.CorpusEntry) error

	// ReplaceEntries atomically swaps the persisted corpus: existing
	// entries and the stored model are replaced by the given ones in a
	// single transaction. A failure leaves the previous state intact.
	ReplaceEntries(ctx context.Context, model string, entries ...core.CorpusEntry) error

	// LoadEntries returns every persisted entry in append order.
	LoadEntries(ctx context.Context) ([]core.CorpusEntry, error)

	// Count returns the number of persisted entries.
	Count(ctx context.Context) (int, error)

	// Clear removes all persisted entries and the stored model name.
	// Returns the number of entries removed.
	Clear(ctx context.Context) (int, error)

	// SetModel records which embedding model produced the persisted
	// vectors. Vectors from different models are not comparable, so a
	// loader must check the model before trusting stored vectors.
	SetModel(ctx context.Context, model string) error

	// Model returns the recorded embedding model.
	// Returns ErrNotFound if no model has been recorded.
	Model(ctx context.Context) (string, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}
