package websearch

import "context"

// MaxQueryLength is the longest query dispatched to a provider,
// counted in runes. Longer queries are truncated before the call.
const MaxQueryLength = 128

// DefaultResultLimit is the number of hits requested per query when the
// caller does not specify one.
const DefaultResultLimit = 5

// Result is one web search hit: the snippet is the reference text
// compared against document segments.
type Result struct {
	Title   string
	Snippet string
	URL     string
	Source  string
}

// Searcher is implemented by web search providers.
// Implementations must be thread-safe for concurrent use.
type Searcher interface {
	// Search returns up to limit hits for the query.
	// Returns an error if the provider call fails.
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}
