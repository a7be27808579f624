package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const braveURL = "https://api.search.brave.com/res/v1/web/search"

// Brave queries the Brave Search API.
type Brave struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

// NewBrave creates the provider. An empty endpoint uses the public API.
func NewBrave(apiKey, endpoint string) *Brave {
	if endpoint == "" {
		endpoint = braveURL
	}
	return &Brave{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

func (b *Brave) Name() string { return "brave" }

// Results calls the web search endpoint.
func (b *Brave) Results(ctx context.Context, query string) ([]Result, error) {
	reqURL := b.endpoint + "?q=" + url.QueryEscape(query) + "&count=10"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Subscription-Token", b.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave api error: %d", resp.StatusCode)
	}

	var body struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("brave: failed to decode response: %w", err)
	}

	results := make([]Result, 0, len(body.Web.Results))
	for _, r := range body.Web.Results {
		results = append(results, Result{Title: r.Title, Link: r.URL, Snippet: r.Description})
	}
	return results, nil
}
