package vantage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const processingJSON = `{
	"id": "a-1",
	"title": "Adaptive Cooling",
	"status": "processing",
	"disclosure": {"filename": "cooling.pdf", "uploadedAt": "2025-03-01T10:00:00Z"},
	"createdAt": "2025-03-01T10:00:00Z",
	"updatedAt": "2025-03-01T10:00:00Z"
}`

const completedJSON = `{
	"id": "a-1",
	"title": "Adaptive Cooling",
	"status": "completed",
	"disclosure": {"filename": "cooling.pdf", "uploadedAt": "2025-03-01T10:00:00Z"},
	"noveltyScore": 72.5,
	"recommendation": "pursue",
	"reasoning": "High novelty (73%). Top match only 35% similar. Strong patent potential.",
	"extractedClaims": {"title": "Adaptive Cooling", "background": "", "innovations": ["phase-change loop"], "keywords": ["cooling"], "ipcClassifications": ["F28D"]},
	"patents": [{"patentId": "US10012345B2", "title": "Thermal management", "similarityScore": 35}],
	"patentabilityAssessment": {"isPatentable": true, "confidence": 90},
	"createdAt": "2025-03-01T10:00:00Z",
	"updatedAt": "2025-03-01T10:05:00Z",
	"completedAt": "2025-03-01T10:05:00Z"
}`

const failedJSON = `{
	"id": "a-2",
	"title": "cooling",
	"status": "failed",
	"reasoning": "analysis failed: disclosure contains no extractable text",
	"disclosure": {"filename": "cooling.pdf", "uploadedAt": "2025-03-01T10:00:00Z"},
	"createdAt": "2025-03-01T10:00:00Z",
	"updatedAt": "2025-03-01T10:01:00Z"
}`

func TestCreateAnalysis(t *testing.T) {
	var gotTitle, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/analyses" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		file.Close()
		gotFile = header.Filename
		gotTitle = r.FormValue("title")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(processingJSON))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	analysis, err := client.CreateAnalysis(context.Background(), "cooling.pdf", strings.NewReader("%PDF-1.4 body"), "Adaptive Cooling")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if gotFile != "cooling.pdf" || gotTitle != "Adaptive Cooling" {
		t.Fatalf("server saw file=%q title=%q", gotFile, gotTitle)
	}
	if analysis.ID != "a-1" || analysis.Status != StatusProcessing {
		t.Fatalf("unexpected analysis %+v", analysis)
	}
	if analysis.Result != nil {
		t.Fatal("processing analysis must not carry a result")
	}
}

func TestCreateAnalysisRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"unsupported_file_type","message":"only PDF and DOCX files are supported"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.CreateAnalysis(context.Background(), "notes.txt", strings.NewReader("plain text"), "")

	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %T: %v", err, err)
	}
	if subErr.Message != "only PDF and DOCX files are supported" {
		t.Fatalf("expected verbatim service message, got %q", subErr.Message)
	}
}

func TestGetAnalysisCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completedJSON))
	}))
	defer srv.Close()

	analysis, err := NewClient(srv.URL).GetAnalysis(context.Background(), "a-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !analysis.Terminal() {
		t.Fatal("completed analysis must be terminal")
	}
	if analysis.Result == nil {
		t.Fatal("completed analysis must carry a result")
	}
	if analysis.Result.NoveltyScore != 72.5 || analysis.Result.Recommendation != "pursue" {
		t.Fatalf("unexpected result %+v", analysis.Result)
	}
	if len(analysis.Result.Patents) != 1 || analysis.Result.Patents[0].PatentID != "US10012345B2" {
		t.Fatalf("unexpected patents %+v", analysis.Result.Patents)
	}
	if analysis.Result.Patentability == nil || !analysis.Result.Patentability.IsPatentable {
		t.Fatalf("unexpected patentability %+v", analysis.Result.Patentability)
	}
}

func TestGetAnalysisFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(failedJSON))
	}))
	defer srv.Close()

	analysis, err := NewClient(srv.URL).GetAnalysis(context.Background(), "a-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if analysis.Result != nil {
		t.Fatal("failed analysis must not carry a result")
	}
	if analysis.Reasoning == "" {
		t.Fatal("failed analysis must carry its failure reasoning")
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"not_found","message":"analysis not found"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetAnalysis(context.Background(), "missing")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
	if nf.ID != "missing" {
		t.Fatalf("expected id in error, got %q", nf.ID)
	}
}

func TestListAnalyses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("limit") != "5" || q.Get("status") != "completed" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(AnalysisPage{Total: 12, Page: 2, Limit: 5, Pages: 3})
	}))
	defer srv.Close()

	page, err := NewClient(srv.URL).ListAnalyses(context.Background(), ListOptions{Page: 2, Limit: 5, Status: "completed"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 12 || page.Pages != 3 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestDeleteAnalysisRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"internal_error","message":"storage unavailable"}}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).DeleteAnalysis(context.Background(), "a-1")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
	if te.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", te.StatusCode)
	}
}

func TestGenerateReportQualifiesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/analyses/a-1/report" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"reportUrl":"/api/v1/reports/a-1.pdf","expiresAt":null}`))
	}))
	defer srv.Close()

	report, err := NewClient(srv.URL).GenerateReport(context.Background(), "a-1")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.URL != srv.URL+"/api/v1/reports/a-1.pdf" {
		t.Fatalf("expected qualified URL, got %q", report.URL)
	}
	if report.ExpiresAt != nil {
		t.Fatalf("expected nil expiry, got %v", report.ExpiresAt)
	}
}

func TestGenerateReportNotCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"not_completed","message":"analysis is not completed"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GenerateReport(context.Background(), "a-1")
	var re *ReportGenerationError
	if !errors.As(err, &re) {
		t.Fatalf("expected ReportGenerationError, got %T: %v", err, err)
	}
	if re.Message != "analysis is not completed" {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestClientSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", got)
		}
		w.Write([]byte(processingJSON))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	client.Token = func() string { return "secret" }
	if _, err := client.GetAnalysis(context.Background(), "a-1"); err != nil {
		t.Fatalf("get: %v", err)
	}
}
