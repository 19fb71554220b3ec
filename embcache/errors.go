package embcache

import "errors"

var (
	// ErrInvalidCapacity is returned when a cache capacity is below one.
	ErrInvalidCapacity = errors.New("cache capacity must be at least 1")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrBatchSizeMismatch is returned when a batch embedding call
	// returns a different number of vectors than texts requested.
	ErrBatchSizeMismatch = errors.New("batch embedding count does not match input count")
)
