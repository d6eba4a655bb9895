package orchestrate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vantage-backend/internal/patents"
)

// Client talks to the external workflow orchestration service. When it
// is not configured the conductor runs the skills directly instead.
type Client struct {
	baseURL  string
	apiKey   string
	teamID   string
	workflow string
	http     *http.Client
}

func NewClient(baseURL, apiKey, teamID, workflow string) *Client {
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		teamID:   teamID,
		workflow: workflow,
		http:     &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != "" && c.teamID != ""
}

type executeRequest struct {
	Workflow     string         `json:"workflow"`
	AnalysisID   string         `json:"analysisId"`
	DocumentText string         `json:"documentText"`
	Options      executeOptions `json:"options"`
}

type executeOptions struct {
	MaxPatents    int     `json:"maxPatents"`
	MinSimilarity float64 `json:"minSimilarity"`
}

type executeResponse struct {
	ExecutionID string `json:"executionId"`
	Status      string `json:"status"`
	Results     struct {
		PatentabilityAssessment PatentabilityAssessment `json:"patentabilityAssessment"`
		ExtractedClaims         Claims                  `json:"extractedClaims"`
		Patents                 []patents.Patent        `json:"patents"`
		NoveltyScore            float64                 `json:"noveltyScore"`
		Recommendation          string                  `json:"recommendation"`
		Reasoning               string                  `json:"reasoning"`
		SkipPriorArt            bool                    `json:"skipPriorArt"`
	} `json:"results"`
}

// ExecuteWorkflow runs the full analysis remotely and maps the response
// into a Result. The execution id is returned for logging.
func (c *Client) ExecuteWorkflow(ctx context.Context, analysisID, documentText string) (Result, string, error) {
	if len(documentText) > 5000 {
		documentText = documentText[:5000]
	}
	body, err := json.Marshal(executeRequest{
		Workflow:     c.workflow,
		AnalysisID:   analysisID,
		DocumentText: documentText,
		Options:      executeOptions{MaxPatents: 100, MinSimilarity: 0.7},
	})
	if err != nil {
		return Result{}, "", err
	}

	url := fmt.Sprintf("%s/v1/workflows/%s/executions", c.baseURL, c.workflow)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Team-ID", c.teamID)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Result{}, "", fmt.Errorf("workflow execution returned %d: %s", resp.StatusCode, string(b))
	}

	var out executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, "", fmt.Errorf("decode workflow response: %w", err)
	}
	if out.Status != "completed" {
		return Result{}, out.ExecutionID, fmt.Errorf("workflow execution ended with status %q", out.Status)
	}

	res := Result{
		Patentability:  out.Results.PatentabilityAssessment,
		Claims:         out.Results.ExtractedClaims,
		ScoredPatents:  out.Results.Patents,
		NoveltyScore:   out.Results.NoveltyScore,
		Recommendation: out.Results.Recommendation,
		Reasoning:      out.Results.Reasoning,
		SkipPriorArt:   out.Results.SkipPriorArt,
	}
	return res, out.ExecutionID, nil
}
