package websearch

import (
	"context"
	"log/slog"
)

// Guard wraps a provider with the detection engine's dispatch contract:
// queries are truncated to MaxQueryLength before the call, and provider
// failures degrade to an empty result list instead of an error. The
// engine treats missing search results as "no candidates", so an
// unreachable provider only degrades a detection call, never fails it.
type Guard struct {
	searcher Searcher
	logger   *slog.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
	}
}

// NewGuard wraps a provider. A nil provider is allowed and yields a
// guard that always returns no results, which is how a detector runs
// with search disabled.
func NewGuard(searcher Searcher, opts ...GuardOption) *Guard {
	g := &Guard{
		searcher: searcher,
		logger:   slog.Default().With("component", "websearch"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Enabled reports whether a provider is configured.
func (g *Guard) Enabled() bool {
	return g.searcher != nil
}

// Search dispatches the truncated query and returns the provider's
// hits, or an empty list when no provider is configured or the call
// fails.
func (g *Guard) Search(ctx context.Context, query string, limit int) []Result {
	if g.searcher == nil {
		return nil
	}
	if limit < 1 {
		limit = DefaultResultLimit
	}
	// Byte length bounds rune count, so short queries skip the copy.
	if len(query) > MaxQueryLength {
		if runes := []rune(query); len(runes) > MaxQueryLength {
			query = string(runes[:MaxQueryLength])
		}
	}

	results, err := g.searcher.Search(ctx, query, limit)
	if err != nil {
		g.logger.Warn("search provider failed, continuing without candidates", "err", err)
		return nil
	}

	return results
}
