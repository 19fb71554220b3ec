package ingest

import "errors"

var (
	// ErrCorpusRequired is returned when a corpus is not provided.
	ErrCorpusRequired = errors.New("corpus required")

	// ErrEmptyDocument is returned for documents with no text.
	ErrEmptyDocument = errors.New("document has no text")
)
