package mock

import (
	"context"

	"github.com/poiesic/simcheck/websearch"
)

// MockSearcher is a test double for websearch.Searcher.
// It allows custom behavior injection via function fields.
type MockSearcher struct {
	// SearchFunc is called by Search if set.
	// If nil, Results and Err are returned as-is.
	SearchFunc func(ctx context.Context, query string, limit int) ([]websearch.Result, error)

	// Results is the fixed response returned when SearchFunc is nil.
	Results []websearch.Result

	// Err is the fixed error returned when SearchFunc is nil.
	Err error

	// Queries records every query dispatched to the mock.
	Queries []string

	callCount int
}

// NewMockSearcher creates a mock searcher returning no results.
// Note: Returns concrete type to allow test assertions.
func NewMockSearcher() *MockSearcher {
	return &MockSearcher{}
}

// Search returns the injected behavior or the fixed Results/Err pair.
func (m *MockSearcher) Search(ctx context.Context, query string, limit int) ([]websearch.Result, error) {
	m.callCount++
	m.Queries = append(m.Queries, query)

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, limit)
	}

	if m.Err != nil {
		return nil, m.Err
	}

	if limit < len(m.Results) {
		return m.Results[:limit], nil
	}
	return m.Results, nil
}

// CallCount returns the number of times Search was called.
func (m *MockSearcher) CallCount() int {
	return m.callCount
}
