// internal/plugin/sources.go
package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPSource queries a people-search site through a JSON gateway. The actual
// browser-driven scraping runs in a separate gateway process; this plugin
// only speaks HTTP to it, the same way the webform submitter does.
type HTTPSource struct {
	SourceName string
	Endpoint   string
	Client     *http.Client
}

func NewHTTPSource(name, endpoint string) *HTTPSource {
	return &HTTPSource{
		SourceName: name,
		Endpoint:   endpoint,
		Client:     &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *HTTPSource) Name() string { return s.SourceName }

func (s *HTTPSource) Search(ctx context.Context, query SearchQuery) (SearchResult, error) {
	if s.Endpoint == "" {
		return SearchResult{Source: s.SourceName}, fmt.Errorf("no endpoint configured for source %s", s.SourceName)
	}

	params := url.Values{}
	params.Set("source", s.SourceName)
	params.Set("first_name", query.FirstName)
	params.Set("last_name", query.LastName)
	if query.City != nil {
		params.Set("city", *query.City)
	}
	if query.State != nil {
		params.Set("state", *query.State)
	}
	if query.Age != nil {
		params.Set("age", fmt.Sprintf("%d", *query.Age))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return SearchResult{Source: s.SourceName}, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return SearchResult{Source: s.SourceName}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return SearchResult{Source: s.SourceName}, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	var out struct {
		Records []Record `json:"records"`
		Error   string   `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SearchResult{Source: s.SourceName}, fmt.Errorf("invalid gateway response: %w", err)
	}
	if out.Error != "" {
		return SearchResult{Source: s.SourceName}, fmt.Errorf("%s", out.Error)
	}

	if out.Records == nil {
		out.Records = []Record{}
	}
	return SearchResult{
		Source:  s.SourceName,
		Success: true,
		Records: out.Records,
	}, nil
}
