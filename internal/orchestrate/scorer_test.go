package orchestrate

import (
	"context"
	"errors"
	"testing"

	"vantage-backend/internal/llm"
	"vantage-backend/internal/patents"
)

type stubLLM struct {
	response string
	err      error
	prompts  []string
}

func (s *stubLLM) Generate(_ context.Context, prompt string, _ llm.GenerateOptions) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestScorePatentsLLM(t *testing.T) {
	client := &stubLLM{response: `{"similarity_score": 82, "overlapping_concepts": ["anode coating"], "key_differences": ["different electrolyte"]}`}
	claims := Claims{Innovations: []string{"coated anode for lithium cells"}}

	scored := ScorePatents(context.Background(), client, claims, []patents.Patent{
		{PatentID: "US1B2", Title: "Battery anode", Abstract: "An anode."},
	})
	if len(scored) != 1 {
		t.Fatalf("len = %d, want 1", len(scored))
	}
	if scored[0].SimilarityScore != 82 {
		t.Errorf("score = %v, want 82", scored[0].SimilarityScore)
	}
	if len(scored[0].OverlappingConcepts) != 1 || scored[0].OverlappingConcepts[0] != "anode coating" {
		t.Errorf("overlapping = %v", scored[0].OverlappingConcepts)
	}
}

func TestScorePatentsKeywordFallback(t *testing.T) {
	client := &stubLLM{err: errors.New("llm unavailable")}
	claims := Claims{Innovations: []string{"solar inverter control loop"}}

	scored := ScorePatents(context.Background(), client, claims, []patents.Patent{
		{PatentID: "US1B2", Title: "Solar inverter", Abstract: "A control loop for a solar inverter."},
		{PatentID: "US2B2", Title: "Bread toaster", Abstract: "A toaster."},
	})
	if len(scored) != 2 {
		t.Fatalf("len = %d, want 2", len(scored))
	}

	// Four overlapping words (solar, inverter, control, loop) score 40;
	// the toaster shares nothing and scores 0. Sorted descending.
	if scored[0].PatentID != "US1B2" || scored[0].SimilarityScore != 40 {
		t.Errorf("top = %s score %v, want US1B2 at 40", scored[0].PatentID, scored[0].SimilarityScore)
	}
	if scored[1].SimilarityScore != 0 {
		t.Errorf("toaster score = %v, want 0", scored[1].SimilarityScore)
	}
	if len(scored[0].OverlappingConcepts) == 0 {
		t.Error("fallback should mark overlapping concepts")
	}
}

func TestKeywordFallbackCapsAtHundred(t *testing.T) {
	words := "a b c d e f g h i j k l"
	claims := Claims{Innovations: []string{words}}
	score, _, _ := keywordFallback(claims, patents.Patent{Title: words})
	if score != 100 {
		t.Errorf("score = %v, want 100", score)
	}
}
