package orchestrate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"vantage-backend/internal/llm"
	"vantage-backend/internal/patents"
	"vantage-backend/internal/shared/telemetry"
)

const similarityPromptTemplate = `Compare invention disclosure with patent. Return JSON:
{
    "similarity_score": 0-100,
    "overlapping_concepts": ["concept1", "concept2"],
    "key_differences": ["diff1", "diff2"]
}

Disclosure innovations:
%s

Patent:
Title: %s
Abstract: %s`

type similarityResponse struct {
	SimilarityScore     float64  `json:"similarity_score"`
	OverlappingConcepts []string `json:"overlapping_concepts"`
	KeyDifferences      []string `json:"key_differences"`
}

// ScorePatents scores every candidate against the extracted claims and
// returns them ordered by similarity, highest first. LLM failures for a
// single patent degrade to keyword-overlap scoring rather than failing
// the run.
func ScorePatents(ctx context.Context, client llm.Client, claims Claims, candidates []patents.Patent) []patents.Patent {
	scored := make([]patents.Patent, 0, len(candidates))
	for _, p := range candidates {
		score, overlapping, differences, err := scoreOne(ctx, client, claims, p)
		if err != nil {
			telemetry.Warn("orchestrate.similarity_fallback", map[string]any{
				"patent_id": p.PatentID,
				"error":     err.Error(),
			})
			score, overlapping, differences = keywordFallback(claims, p)
		}
		p.SimilarityScore = score
		p.OverlappingConcepts = overlapping
		p.KeyDifferences = differences
		scored = append(scored, p)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SimilarityScore > scored[j].SimilarityScore
	})
	return scored
}

func scoreOne(ctx context.Context, client llm.Client, claims Claims, p patents.Patent) (float64, []string, []string, error) {
	innovations, err := json.Marshal(claims.Innovations)
	if err != nil {
		return 0, nil, nil, err
	}
	abstract := p.Abstract
	if len(abstract) > 500 {
		abstract = abstract[:500]
	}
	prompt := fmt.Sprintf(similarityPromptTemplate, string(innovations), p.Title, abstract)

	raw, err := client.Generate(ctx, prompt, llm.GenerateOptions{MaxTokens: 500, Temperature: 0.1, JSONOnly: true})
	if err != nil {
		return 0, nil, nil, err
	}

	var out similarityResponse
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &out); err != nil {
		return 0, nil, nil, fmt.Errorf("parse similarity response: %w", err)
	}
	return clamp(out.SimilarityScore, 0, 100), out.OverlappingConcepts, out.KeyDifferences, nil
}

// keywordFallback estimates similarity from word overlap between the
// disclosure innovations and the patent title+abstract.
func keywordFallback(claims Claims, p patents.Patent) (float64, []string, []string) {
	innovationWords := wordSet(strings.Join(claims.Innovations, " "))
	patentWords := wordSet(p.Title + " " + p.Abstract)

	common := 0
	for w := range innovationWords {
		if patentWords[w] {
			common++
		}
	}

	score := float64(common * 10)
	if score > 100 {
		score = 100
	}
	return score,
		[]string{"Keyword analysis fallback"},
		[]string{"Full semantic analysis unavailable"}
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
