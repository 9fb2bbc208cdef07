// Package search abstracts the knowledge-base retrieval backend feeding the
// dossier builder. Production deployments query an enterprise search index;
// tests and offline runs use StaticSearcher over fixture documents.
package search

import "context"

// Result is one retrieved document before sanitization.
type Result struct {
	Title      string         `json:"title"`
	URI        string         `json:"uri,omitempty"`
	Snippet    string         `json:"snippet"`
	StructData map[string]any `json:"struct_data,omitempty"`
	Score      float64        `json:"score,omitempty"`
}

// Searcher retrieves documents for a query.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// StaticSearcher serves a fixed result set, optionally truncated to the
// requested size. Useful for tests and air-gapped operation.
type StaticSearcher struct {
	results []Result
}

// NewStaticSearcher creates a Searcher over a fixed result set.
func NewStaticSearcher(results ...Result) *StaticSearcher {
	return &StaticSearcher{results: results}
}

// Search implements Searcher.
func (s *StaticSearcher) Search(ctx context.Context, _ string, maxResults int) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Result, len(s.results))
	copy(out, s.results)
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

var _ Searcher = (*StaticSearcher)(nil)
