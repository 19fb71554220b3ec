package extract

import "errors"

var (
	// ErrUnsupportedFormat is returned for file extensions the
	// extractor does not know how to read.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrNoText is returned when a document yields no extractable text.
	ErrNoText = errors.New("no extractable text found")
)
