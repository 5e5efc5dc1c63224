package providers

import "context"

// WebSearchResult is one hit from a live web search.
type WebSearchResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// WebSearchProvider is the optional live web-search collaborator used for
// context enrichment and hours lookups. Errors degrade to empty context.
type WebSearchProvider interface {
	// Search runs one query and returns up to maxResults hits.
	Search(ctx context.Context, query string, maxResults int) ([]WebSearchResult, error)
}
