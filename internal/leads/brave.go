package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBraveBaseURL = "https://api.search.brave.com/res/v1"

// SearchResult is one web-search hit.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// BraveClient calls the Brave web-search API.
type BraveClient struct {
	apiKey     string
	httpClient *http.Client

	// BaseURL is overridable so tests can point at a mock server.
	BaseURL string
}

// NewBraveClient builds a client for the given subscription token.
func NewBraveClient(apiKey string) *BraveClient {
	return &BraveClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		BaseURL: defaultBraveBaseURL,
	}
}

// Search runs a moderate-safesearch en-US web search.
func (c *BraveClient) Search(ctx context.Context, query string, count int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", fmt.Sprintf("%d", count))
	params.Set("offset", "0")
	params.Set("mkt", "en-US")
	params.Set("safesearch", "moderate")

	u := fmt.Sprintf("%s/web/search?%s", c.BaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation error: %w", err)
	}
	req.Header.Set("X-Subscription-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api rejected request (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Web struct {
			Results []SearchResult `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("response decoding error: %w", err)
	}
	return result.Web.Results, nil
}
