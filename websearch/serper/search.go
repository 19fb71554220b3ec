package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/poiesic/simcheck/websearch"
)

const endpoint = "https://google.serper.dev/search"

// Search implements websearch.Searcher against the serper.dev API.
type Search struct {
	APIKey string
	Client *http.Client
}

var _ websearch.Searcher = (*Search)(nil)

type organicHit struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Organic []organicHit `json:"organic"`
}

// Search queries serper.dev and returns up to limit organic hits.
func (s *Search) Search(ctx context.Context, query string, limit int) ([]websearch.Result, error) {
	payload, err := json.Marshal(map[string]any{"q": query, "num": limit})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper: unexpected status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	results := make([]websearch.Result, 0, len(decoded.Organic))
	for i, hit := range decoded.Organic {
		if i >= limit {
			break
		}
		results = append(results, websearch.Result{
			Title:   hit.Title,
			Snippet: hit.Snippet,
			URL:     hit.Link,
			Source:  "serper",
		})
	}
	return results, nil
}
