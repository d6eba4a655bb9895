package reports

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"vantage-backend/internal/orchestrate"
	"vantage-backend/internal/patents"
)

func TestGenerateWritesPDF(t *testing.T) {
	dir := t.TempDir()
	g := &Generator{Dir: dir}

	fileName, err := g.Generate(Data{
		AnalysisID:     "11111111-2222-3333-4444-555555555555",
		Title:          "Coated anode for lithium cells",
		NoveltyScore:   78.5,
		Recommendation: orchestrate.RecommendationPursue,
		Reasoning:      "High novelty (79%). Top match only 25% similar. Strong patent potential.",
		Patentability:  &orchestrate.PatentabilityAssessment{IsPatentable: true, Confidence: 85},
		Claims: &orchestrate.Claims{
			Innovations: []string{"ceramic-coated anode", "low-temperature sintering step"},
			Keywords:    []string{"anode", "coating", "lithium"},
		},
		Patents: []patents.Patent{
			{PatentID: "US10000000B2", Title: "Battery anode coating", SimilarityScore: 25},
		},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if fileName != "11111111-2222-3333-4444-555555555555.pdf" {
		t.Errorf("fileName = %q", fileName)
	}

	info, err := os.Stat(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatalf("stat report: %v", err)
	}
	if info.Size() == 0 {
		t.Error("report file is empty")
	}

	data, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		t.Error("report is not a PDF")
	}
}

func TestGenerateMinimalData(t *testing.T) {
	g := &Generator{Dir: t.TempDir()}

	if _, err := g.Generate(Data{
		AnalysisID:     "a1",
		Recommendation: orchestrate.RecommendationReject,
	}); err != nil {
		t.Fatalf("Generate with minimal data: %v", err)
	}
}
