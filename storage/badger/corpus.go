package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/storage"
)

// CorpusRepository implements storage.CorpusRepository for BadgerDB.
type CorpusRepository struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.CorpusRepository = (*CorpusRepository)(nil)

// NewCorpusRepository creates a new CorpusRepository.
func NewCorpusRepository(backend *Backend) (storage.CorpusRepository, error) {
	seq, err := backend.GetSequence(corpusEntrySeq)
	if err != nil {
		return nil, err
	}

	return &CorpusRepository{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the entry sequence.
func (r *CorpusRepository) Close() error {
	return r.seq.Release()
}

// WithTransaction delegates to the backend.
func (r *CorpusRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AppendEntries persists entries under monotonically increasing keys,
// so LoadEntries replays them in append order.
func (r *CorpusRepository) AppendEntries(ctx context.Context, entries ...core.CorpusEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			seq, err := r.seq.Next()
			if err != nil {
				return err
			}

			key := makeCorpusEntryKey(seq)
			if err := tx.Set(key, storage.MarshalCorpusEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// LoadEntries returns every persisted entry in append order.
func (r *CorpusRepository) LoadEntries(ctx context.Context) ([]core.CorpusEntry, error) {
	var entries []core.CorpusEntry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(corpusEntryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				entry, err := storage.UnmarshalCorpusEntry(val)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of persisted entries.
func (r *CorpusRepository) Count(ctx context.Context) (int, error) {
	count := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(corpusEntryPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)

	if err != nil {
		return 0, err
	}
	return count, nil
}

// entryKeys returns the key of every persisted entry. Collected in a
// read pass of its own; deleting while iterating the same transaction
// invalidates the iterator.
func (r *CorpusRepository) entryKeys() ([][]byte, error) {
	var keys [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(corpusEntryPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// ReplaceEntries swaps the persisted corpus in one transaction: old
// entries are deleted, the model recorded, and the new entries written
// under fresh sequence keys. Nothing is committed on failure, so the
// previous corpus survives a failed replace.
func (r *CorpusRepository) ReplaceEntries(ctx context.Context, model string, entries ...core.CorpusEntry) error {
	keys, err := r.entryKeys()
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		if err := tx.Set([]byte(corpusModelKey), []byte(model)); err != nil {
			return err
		}
		for _, entry := range entries {
			seq, err := r.seq.Next()
			if err != nil {
				return err
			}
			if err := tx.Set(makeCorpusEntryKey(seq), storage.MarshalCorpusEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Clear removes all persisted entries and the stored model name.
func (r *CorpusRepository) Clear(ctx context.Context) (int, error) {
	keys, err := r.entryKeys()
	if err != nil {
		return 0, err
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		if err := tx.Delete([]byte(corpusModelKey)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	return len(keys), nil
}

// SetModel records the embedding model the persisted vectors came from.
func (r *CorpusRepository) SetModel(ctx context.Context, model string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(corpusModelKey), []byte(model)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Model returns the recorded embedding model.
func (r *CorpusRepository) Model(ctx context.Context) (string, error) {
	var model string

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(corpusModelKey))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			model = string(val)
			return nil
		})
	}, false)

	if err != nil {
		return "", err
	}
	return model, nil
}
