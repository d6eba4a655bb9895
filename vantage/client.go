package vantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a typed HTTP client for the analysis and report services.
// Token, when set, supplies a bearer token per request; it is treated
// as an opaque capability owned by the hosting application.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      func() string
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateAnalysis uploads a disclosure and returns the initial
// (processing) record.
func (c *Client) CreateAnalysis(ctx context.Context, fileName string, file io.Reader, title string) (Analysis, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		var err error
		defer func() { pw.CloseWithError(err) }()
		var part io.Writer
		if part, err = mw.CreateFormFile("file", fileName); err != nil {
			return
		}
		if _, err = io.Copy(part, file); err != nil {
			return
		}
		if title != "" {
			if err = mw.WriteField("title", title); err != nil {
				return
			}
		}
		err = mw.Close()
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/analyses", pr)
	if err != nil {
		return Analysis{}, &TransportError{Op: "create analysis", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Analysis{}, &TransportError{Op: "create analysis", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return Analysis{}, &SubmissionError{Message: serviceMessage(resp, "upload rejected")}
	default:
		return Analysis{}, &TransportError{Op: "create analysis", StatusCode: resp.StatusCode, Message: serviceMessage(resp, "")}
	}

	var analysis Analysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return Analysis{}, &TransportError{Op: "create analysis", Err: fmt.Errorf("decode response: %w", err)}
	}
	return analysis, nil
}

// GetAnalysis fetches the current state of one analysis.
func (c *Client) GetAnalysis(ctx context.Context, id string) (Analysis, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/analyses/"+url.PathEscape(id), nil)
	if err != nil {
		return Analysis{}, &TransportError{Op: "fetch analysis", Err: err}
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Analysis{}, &TransportError{Op: "fetch analysis", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Analysis{}, &NotFoundError{ID: id}
	default:
		return Analysis{}, &TransportError{Op: "fetch analysis", StatusCode: resp.StatusCode, Message: serviceMessage(resp, "")}
	}

	var analysis Analysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return Analysis{}, &TransportError{Op: "fetch analysis", Err: fmt.Errorf("decode response: %w", err)}
	}
	return analysis, nil
}

// ListOptions pages and filters ListAnalyses.
type ListOptions struct {
	Page   int
	Limit  int
	Status string
}

// ListAnalyses fetches one page of analyses, newest first.
func (c *Client) ListAnalyses(ctx context.Context, opts ListOptions) (AnalysisPage, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	path := "/api/v1/analyses"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return AnalysisPage{}, &TransportError{Op: "list analyses", Err: err}
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return AnalysisPage{}, &TransportError{Op: "list analyses", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return AnalysisPage{}, &TransportError{Op: "list analyses", StatusCode: resp.StatusCode, Message: serviceMessage(resp, "")}
	}

	var page AnalysisPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return AnalysisPage{}, &TransportError{Op: "list analyses", Err: fmt.Errorf("decode response: %w", err)}
	}
	return page, nil
}

// DeleteAnalysis removes an analysis server-side.
func (c *Client) DeleteAnalysis(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/v1/analyses/"+url.PathEscape(id), nil)
	if err != nil {
		return &TransportError{Op: "delete analysis", Err: err}
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &TransportError{Op: "delete analysis", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return &TransportError{Op: "delete analysis", StatusCode: resp.StatusCode, Message: serviceMessage(resp, "")}
	}
	return nil
}

// GenerateReport asks the service to render a report for a completed
// analysis and returns a fully-qualified retrieval URL.
func (c *Client) GenerateReport(ctx context.Context, id string) (Report, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/analyses/"+url.PathEscape(id)+"/report", nil)
	if err != nil {
		return Report{}, &TransportError{Op: "generate report", Err: err}
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Report{}, &TransportError{Op: "generate report", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Report{}, &ReportGenerationError{Message: serviceMessage(resp, "service could not produce a report")}
	}

	var report Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return Report{}, &TransportError{Op: "generate report", Err: fmt.Errorf("decode response: %w", err)}
	}
	if strings.HasPrefix(report.URL, "/") {
		report.URL = c.BaseURL + report.URL
	}
	return report, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.Token != nil {
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// serviceMessage extracts the service's error message, falling back to
// the given generic text.
func serviceMessage(resp *http.Response, fallback string) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(body) > 0 {
		var envelope errorEnvelope
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
			return envelope.Error.Message
		}
	}
	if fallback != "" {
		return fallback
	}
	return http.StatusText(resp.StatusCode)
}
