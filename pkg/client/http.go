package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rubiojr/docsearch/pkg/search"
)

// HTTPSearcher queries a docsearch server's /search.json endpoint.
type HTTPSearcher struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSearcher creates a searcher for the server at baseURL.
func NewHTTPSearcher(baseURL string) *HTTPSearcher {
	return &HTTPSearcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Query string              `json:"query"`
	Items []search.ResultItem `json:"items"`
	Count int                 `json:"count"`
}

// Search implements Searcher. Any non-200 response is an error.
func (s *HTTPSearcher) Search(ctx context.Context, query string) ([]search.ResultItem, error) {
	endpoint := s.BaseURL + "/search.json?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed: %s", resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return body.Items, nil
}
