package patentsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vantage-backend/internal/shared/telemetry"
)

// Patent is a prior-art document returned by a search, before scoring.
type Patent struct {
	PatentID           string   `json:"patentId"`
	Title              string   `json:"title"`
	Abstract           string   `json:"abstract"`
	Claims             []string `json:"claims"`
	PublicationDate    string   `json:"publicationDate"`
	Assignee           string   `json:"assignee"`
	Inventors          []string `json:"inventors"`
	IPCClassifications []string `json:"ipcClassifications"`
	Source             string   `json:"source,omitempty"`
}

// Patent sources.
const (
	SourceAPI       = "patents-api"
	SourceGenerated = "generated"
)

// Query describes a prior-art search derived from extracted claims.
type Query struct {
	Keywords           []string
	IPCClassifications []string
	MaxResults         int
}

// Searcher finds candidate prior-art patents. When no external patents
// API is configured it serves a deterministic generated corpus so the
// pipeline stays usable offline.
type Searcher struct {
	apiURL string
	apiKey string
	client *http.Client
}

func NewSearcher(apiURL, apiKey string) *Searcher {
	return &Searcher{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *Searcher) Search(ctx context.Context, q Query) ([]Patent, error) {
	if q.MaxResults <= 0 {
		q.MaxResults = 20
	}
	if s.apiURL == "" {
		return generateCorpus(q), nil
	}

	patents, err := s.searchAPI(ctx, q)
	if err != nil {
		telemetry.Warn("patentsearch.api_fallback", map[string]any{"error": err.Error()})
		return generateCorpus(q), nil
	}
	return patents, nil
}

type apiRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"maxResults"`
}

type apiResponse struct {
	Patents []Patent `json:"patents"`
}

func (s *Searcher) searchAPI(ctx context.Context, q Query) ([]Patent, error) {
	body, err := json.Marshal(apiRequest{Query: BuildQueryString(q), MaxResults: q.MaxResults})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("patents api returned %d: %s", resp.StatusCode, string(b))
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode patents api response: %w", err)
	}
	for i := range out.Patents {
		out.Patents[i].Source = SourceAPI
	}
	return out.Patents, nil
}
