package analyses

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"vantage-backend/internal/orchestrate"
	"vantage-backend/internal/patents"
	"vantage-backend/internal/reports"
	"vantage-backend/internal/shared/storage/object/local"
)

type stubWorkflow struct {
	result orchestrate.Result
	err    error
	done   chan string
}

func (s *stubWorkflow) Run(_ context.Context, analysisID, _ string) (orchestrate.Result, error) {
	if s.done != nil {
		defer func() { s.done <- analysisID }()
	}
	return s.result, s.err
}

func buildDOCX(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document.xml: %v", err)
	}
	doc := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	for _, p := range strings.Split(text, "\n") {
		doc += fmt.Sprintf("<w:p><w:r><w:t>%s</w:t></w:r></w:p>", p)
	}
	doc += `</w:body></w:document>`
	if _, err := f.Write([]byte(doc)); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T, wf WorkflowRunner) *Service {
	t.Helper()
	return &Service{
		Repo:     NewMemoryRepo(),
		Patents:  patents.NewMemoryRepo(),
		Store:    local.New(t.TempDir()),
		Workflow: wf,
		Reports:  &reports.Generator{Dir: t.TempDir()},
		Logs:     orchestrate.NewMemoryLogRepo(),
	}
}

func waitCompleted(t *testing.T, svc *Service, wf *stubWorkflow, id string) Analysis {
	t.Helper()
	select {
	case <-wf.done:
	case <-time.After(5 * time.Second):
		t.Fatal("workflow did not run")
	}
	// The terminal update happens after the workflow returns; poll
	// briefly for it.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		a, err := svc.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if a.Status != StatusProcessing {
			return a
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("analysis never left processing")
	return Analysis{}
}

func TestCreateRunsWorkflowToCompletion(t *testing.T) {
	score := 85.0
	wf := &stubWorkflow{
		done: make(chan string, 1),
		result: orchestrate.Result{
			Patentability:  orchestrate.PatentabilityAssessment{IsPatentable: true, Confidence: 90},
			Claims:         orchestrate.Claims{Innovations: []string{"coated anode"}, Keywords: []string{"anode"}},
			ScoredPatents:  []patents.Patent{{PatentID: "US1B2", Title: "Prior art", SimilarityScore: 20}},
			NoveltyScore:   score,
			Recommendation: orchestrate.RecommendationPursue,
			Reasoning:      "high novelty",
		},
	}
	svc := newTestService(t, wf)

	doc := buildDOCX(t, "Coated anode battery\nA novel anode coating.")
	created, err := svc.Create(context.Background(), "disclosure.docx", "", bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != StatusProcessing {
		t.Errorf("status = %q, want processing", created.Status)
	}
	if created.Title != "Coated anode battery" {
		t.Errorf("title = %q, want first line of document", created.Title)
	}

	final := waitCompleted(t, svc, wf, created.ID)
	if final.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed", final.Status)
	}
	if final.NoveltyScore == nil || *final.NoveltyScore != score {
		t.Errorf("noveltyScore = %v, want %v", final.NoveltyScore, score)
	}
	if final.Recommendation != orchestrate.RecommendationPursue {
		t.Errorf("recommendation = %q", final.Recommendation)
	}
	if final.ExtractedClaims == nil || len(final.ExtractedClaims.Innovations) != 1 {
		t.Errorf("extractedClaims = %+v", final.ExtractedClaims)
	}
	if final.CompletedAt == nil {
		t.Error("completedAt not set")
	}

	matches, err := svc.PatentsFor(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("PatentsFor: %v", err)
	}
	if len(matches) != 1 || matches[0].PatentID != "US1B2" {
		t.Errorf("matches = %+v", matches)
	}
}

func TestCreateWorkflowFailure(t *testing.T) {
	wf := &stubWorkflow{done: make(chan string, 1), err: errors.New("llm unavailable")}
	svc := newTestService(t, wf)

	created, err := svc.Create(context.Background(), "disclosure.docx", "My title", bytes.NewReader(buildDOCX(t, "Some text")))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Title != "My title" {
		t.Errorf("title = %q, explicit title should win", created.Title)
	}

	final := waitCompleted(t, svc, wf, created.ID)
	if final.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", final.Status)
	}
	if !strings.Contains(final.Reasoning, "llm unavailable") {
		t.Errorf("reasoning = %q", final.Reasoning)
	}
	// Failed analyses carry no result fields.
	if final.NoveltyScore != nil || final.ExtractedClaims != nil || final.Recommendation != "" {
		t.Errorf("failed analysis should not carry result fields: %+v", final)
	}
	if final.CompletedAt != nil {
		t.Errorf("completedAt is reserved for the transition to completed, got %v", final.CompletedAt)
	}
}

func TestCreateRejectsUnsupportedExtension(t *testing.T) {
	svc := newTestService(t, &stubWorkflow{})

	if _, err := svc.Create(context.Background(), "notes.txt", "", strings.NewReader("text")); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestCreateRejectsEmptyFile(t *testing.T) {
	svc := newTestService(t, &stubWorkflow{})

	if _, err := svc.Create(context.Background(), "empty.pdf", "", strings.NewReader("")); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("err = %v, want ErrEmptyFile", err)
	}
}

func TestListPagination(t *testing.T) {
	svc := newTestService(t, &stubWorkflow{})
	repo := svc.Repo.(*MemoryRepo)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		status := StatusProcessing
		if i%2 == 0 {
			status = StatusCompleted
		}
		_ = repo.Create(context.Background(), Analysis{
			ID:        fmt.Sprintf("a%02d", i),
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	page, total, err := svc.List(context.Background(), 1, 10, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 25 || len(page) != 10 {
		t.Fatalf("total = %d len = %d, want 25/10", total, len(page))
	}
	if page[0].ID != "a24" {
		t.Errorf("first item = %s, want newest (a24)", page[0].ID)
	}

	page3, _, err := svc.List(context.Background(), 3, 10, "")
	if err != nil {
		t.Fatalf("List page 3: %v", err)
	}
	if len(page3) != 5 {
		t.Errorf("page 3 len = %d, want 5", len(page3))
	}

	completed, totalCompleted, err := svc.List(context.Background(), 1, 50, StatusCompleted)
	if err != nil {
		t.Fatalf("List by status: %v", err)
	}
	if totalCompleted != 13 || len(completed) != 13 {
		t.Errorf("completed = %d/%d, want 13/13", len(completed), totalCompleted)
	}
}

func TestDeleteRemovesEverything(t *testing.T) {
	wf := &stubWorkflow{
		done: make(chan string, 1),
		result: orchestrate.Result{
			Patentability:  orchestrate.PatentabilityAssessment{IsPatentable: true},
			ScoredPatents:  []patents.Patent{{PatentID: "US1B2"}},
			Recommendation: orchestrate.RecommendationPursue,
		},
	}
	svc := newTestService(t, wf)

	created, err := svc.Create(context.Background(), "disclosure.docx", "t", bytes.NewReader(buildDOCX(t, "text")))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	waitCompleted(t, svc, wf, created.ID)

	logs := svc.Logs.(*orchestrate.MemoryLogRepo)
	if _, err := logs.Insert(context.Background(), orchestrate.LogEntry{AnalysisID: created.ID, SkillName: "extract_claims"}); err != nil {
		t.Fatalf("Insert log: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	matches, _ := svc.PatentsFor(context.Background(), created.ID)
	if len(matches) != 0 {
		t.Errorf("patents not deleted: %+v", matches)
	}
	if entries, _ := logs.ListByAnalysis(context.Background(), created.ID); len(entries) != 0 {
		t.Errorf("skill logs not deleted: %+v", entries)
	}

	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestGenerateReportRequiresCompletion(t *testing.T) {
	svc := newTestService(t, &stubWorkflow{})
	repo := svc.Repo.(*MemoryRepo)
	_ = repo.Create(context.Background(), Analysis{ID: "a1", Status: StatusProcessing, CreatedAt: time.Now().UTC()})

	if _, err := svc.GenerateReport(context.Background(), "a1"); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("err = %v, want ErrNotCompleted", err)
	}
	if _, err := svc.GenerateReport(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGenerateReportReturnsURL(t *testing.T) {
	svc := newTestService(t, &stubWorkflow{})
	repo := svc.Repo.(*MemoryRepo)

	_ = repo.Create(context.Background(), Analysis{ID: "a1", Status: StatusProcessing, Title: "t", CreatedAt: time.Now().UTC()})
	_ = repo.Complete(context.Background(), "a1", ResultUpdate{
		NoveltyScore:   80,
		Recommendation: orchestrate.RecommendationPursue,
		Reasoning:      "ok",
		IsPatentable:   true,
	}, time.Now().UTC())

	url, err := svc.GenerateReport(context.Background(), "a1")
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if url != "/api/v1/reports/a1.pdf" {
		t.Errorf("url = %q", url)
	}
}
