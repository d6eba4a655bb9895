package patents

import (
	"context"
	"testing"
)

func TestMemoryRepoReplaceAndList(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if err := repo.ReplaceForAnalysis(ctx, "a1", []Patent{
		{PatentID: "US1B2", Title: "low", SimilarityScore: 30},
		{PatentID: "US2B2", Title: "high", SimilarityScore: 92},
		{PatentID: "US3B2", Title: "mid", SimilarityScore: 55},
	}); err != nil {
		t.Fatalf("ReplaceForAnalysis: %v", err)
	}

	got, err := repo.ListByAnalysis(ctx, "a1")
	if err != nil {
		t.Fatalf("ListByAnalysis: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].PatentID != "US2B2" || got[1].PatentID != "US3B2" || got[2].PatentID != "US1B2" {
		t.Fatalf("unexpected order: %v %v %v", got[0].PatentID, got[1].PatentID, got[2].PatentID)
	}
	for _, p := range got {
		if p.AnalysisID != "a1" || p.ID == 0 {
			t.Errorf("row not stamped: %+v", p)
		}
	}

	// Replace swaps the whole set.
	if err := repo.ReplaceForAnalysis(ctx, "a1", []Patent{{PatentID: "US9B2", SimilarityScore: 10}}); err != nil {
		t.Fatalf("ReplaceForAnalysis: %v", err)
	}
	got, _ = repo.ListByAnalysis(ctx, "a1")
	if len(got) != 1 || got[0].PatentID != "US9B2" {
		t.Fatalf("replace did not swap set: %+v", got)
	}
}

func TestMemoryRepoDelete(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	_ = repo.ReplaceForAnalysis(ctx, "a1", []Patent{{PatentID: "US1B2"}})
	if err := repo.DeleteForAnalysis(ctx, "a1"); err != nil {
		t.Fatalf("DeleteForAnalysis: %v", err)
	}
	got, _ := repo.ListByAnalysis(ctx, "a1")
	if len(got) != 0 {
		t.Fatalf("expected empty after delete, got %d", len(got))
	}
}
