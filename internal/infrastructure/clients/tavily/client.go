package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dinescout/backend/internal/domain/providers"
	"github.com/dinescout/backend/pkg/config"
)

const defaultBaseURL = "https://api.tavily.com"

// Client implements the WebSearchProvider using the Tavily search API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ providers.WebSearchProvider = (*Client)(nil)

// NewClient creates a new Tavily client.
func NewClient(cfg *config.TavilyConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("tavily api key is required")
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

type searchRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type searchEnvelope struct {
	Results []searchResult `json:"results"`
}

// Search runs one basic-depth search and returns up to maxResults hits.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]providers.WebSearchResult, error) {
	if maxResults <= 0 {
		maxResults = 1
	}

	body, err := json.Marshal(searchRequest{
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: "basic",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tavily request failed with status %d", resp.StatusCode)
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}

	results := make([]providers.WebSearchResult, 0, len(envelope.Results))
	for _, row := range envelope.Results {
		if len(results) >= maxResults {
			break
		}
		results = append(results, providers.WebSearchResult{
			Title:   row.Title,
			Content: row.Content,
		})
	}
	return results, nil
}
