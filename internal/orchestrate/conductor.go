package orchestrate

import (
	"context"
	"fmt"

	"vantage-backend/internal/llm"
	"vantage-backend/internal/patents"
	"vantage-backend/internal/patentsearch"
	"vantage-backend/internal/shared/telemetry"
)

const (
	maxSearchResults   = 100
	maxPatentsReturned = 20
)

// PriorArtSearcher finds candidate patents for scoring.
type PriorArtSearcher interface {
	Search(ctx context.Context, q patentsearch.Query) ([]patentsearch.Patent, error)
}

// WorkflowExecutor runs the full analysis on an external orchestration
// service.
type WorkflowExecutor interface {
	IsConfigured() bool
	ExecuteWorkflow(ctx context.Context, analysisID, documentText string) (Result, string, error)
}

// Conductor runs the analysis workflow: externally orchestrated when an
// executor is configured, otherwise direct skill calls with each step
// logged to orchestrate_logs.
type Conductor struct {
	LLM      llm.Client
	Searcher PriorArtSearcher
	Executor WorkflowExecutor
	Logs     LogRepo
	Workflow string
}

func (c *Conductor) Run(ctx context.Context, analysisID, documentText string) (Result, error) {
	if c.Executor != nil && c.Executor.IsConfigured() {
		res, err := c.runExternal(ctx, analysisID, documentText)
		if err == nil {
			return res, nil
		}
		telemetry.Warn("orchestrate.external_fallback", map[string]any{
			"analysis_id": analysisID,
			"error":       err.Error(),
		})
	}
	return c.runDirect(ctx, analysisID, documentText)
}

func (c *Conductor) runExternal(ctx context.Context, analysisID, documentText string) (Result, error) {
	logID, err := c.Logs.Insert(ctx, LogEntry{
		AnalysisID:   analysisID,
		SkillName:    "orchestrate_workflow",
		Status:       skillStarted,
		WorkflowName: c.Workflow,
		InputData:    map[string]any{"documentChars": len(documentText)},
	})
	if err != nil {
		return Result{}, err
	}

	res, executionID, err := c.Executor.ExecuteWorkflow(ctx, analysisID, documentText)
	if err != nil {
		_ = c.Logs.Finish(ctx, logID, skillFailed, nil, err.Error())
		return Result{}, err
	}

	_ = c.Logs.Finish(ctx, logID, skillCompleted, map[string]any{
		"executionId":    executionID,
		"noveltyScore":   res.NoveltyScore,
		"recommendation": res.Recommendation,
		"patents":        len(res.ScoredPatents),
	}, "")
	return res, nil
}

func (c *Conductor) runDirect(ctx context.Context, analysisID, documentText string) (Result, error) {
	var res Result

	// Patentability gate: a non-patentable disclosure completes
	// immediately without the expensive prior-art search.
	patentability, err := runSkill(ctx, c.Logs, analysisID, "assess_patentability",
		map[string]any{"documentChars": len(documentText)},
		func() (PatentabilityAssessment, map[string]any, error) {
			pa, err := AssessPatentability(ctx, c.LLM, documentText)
			if err != nil {
				return PatentabilityAssessment{}, nil, err
			}
			return pa, map[string]any{"isPatentable": pa.IsPatentable, "confidence": pa.Confidence}, nil
		})
	if err != nil {
		return Result{}, err
	}
	res.Patentability = patentability

	if !patentability.IsPatentable {
		res.SkipPriorArt = true
		res.NoveltyScore = 0
		res.Recommendation = RecommendationReject
		res.Reasoning = "Based on patentability assessment, this disclosure lacks key elements required for a patent. Consider revising the disclosure or publishing as research instead."
		return res, nil
	}

	claims, err := runSkill(ctx, c.Logs, analysisID, "extract_claims",
		map[string]any{"documentChars": len(documentText)},
		func() (Claims, map[string]any, error) {
			cl, err := ExtractClaims(ctx, c.LLM, documentText)
			if err != nil {
				return Claims{}, nil, err
			}
			return cl, map[string]any{"keywords": len(cl.Keywords), "innovations": len(cl.Innovations)}, nil
		})
	if err != nil {
		return Result{}, err
	}
	res.Claims = claims

	candidates, err := runSkill(ctx, c.Logs, analysisID, "search_patents",
		map[string]any{"keywords": claims.Keywords, "ipcClassifications": claims.IPCClassifications},
		func() ([]patentsearch.Patent, map[string]any, error) {
			found, err := c.Searcher.Search(ctx, patentsearch.Query{
				Keywords:           claims.Keywords,
				IPCClassifications: claims.IPCClassifications,
				MaxResults:         maxSearchResults,
			})
			if err != nil {
				return nil, nil, err
			}
			return found, map[string]any{"found": len(found)}, nil
		})
	if err != nil {
		return Result{}, err
	}

	scored, err := runSkill(ctx, c.Logs, analysisID, "score_similarity",
		map[string]any{"candidates": len(candidates)},
		func() ([]patents.Patent, map[string]any, error) {
			sc := ScorePatents(ctx, c.LLM, claims, toStored(candidates))
			top := 0.0
			if len(sc) > 0 {
				top = sc[0].SimilarityScore
			}
			return sc, map[string]any{"scored": len(sc), "topScore": top}, nil
		})
	if err != nil {
		return Result{}, err
	}
	if len(scored) > maxPatentsReturned {
		scored = scored[:maxPatentsReturned]
	}
	res.ScoredPatents = scored

	rec, err := runSkill(ctx, c.Logs, analysisID, "generate_recommendation",
		map[string]any{"patents": len(scored)},
		func() (Recommendation, map[string]any, error) {
			r := Recommend(scored)
			return r, map[string]any{"noveltyScore": r.NoveltyScore, "recommendation": r.Recommendation}, nil
		})
	if err != nil {
		return Result{}, err
	}
	res.NoveltyScore = rec.NoveltyScore
	res.Recommendation = rec.Recommendation
	res.Reasoning = rec.Reasoning

	return res, nil
}

// runSkill logs the skill start, executes it, and records the outcome.
func runSkill[T any](ctx context.Context, logs LogRepo, analysisID, name string, input map[string]any, fn func() (T, map[string]any, error)) (T, error) {
	var zero T

	logID, err := logs.Insert(ctx, LogEntry{
		AnalysisID: analysisID,
		SkillName:  name,
		Status:     skillStarted,
		InputData:  input,
	})
	if err != nil {
		return zero, err
	}

	value, output, err := fn()
	if err != nil {
		_ = logs.Finish(ctx, logID, skillFailed, nil, err.Error())
		return zero, fmt.Errorf("skill %s: %w", name, err)
	}

	_ = logs.Finish(ctx, logID, skillCompleted, output, "")
	return value, nil
}

func toStored(found []patentsearch.Patent) []patents.Patent {
	out := make([]patents.Patent, 0, len(found))
	for _, p := range found {
		out = append(out, patents.Patent{
			PatentID:           p.PatentID,
			Title:              p.Title,
			Abstract:           p.Abstract,
			Claims:             p.Claims,
			PublicationDate:    p.PublicationDate,
			Assignee:           p.Assignee,
			Inventors:          p.Inventors,
			IPCClassifications: p.IPCClassifications,
			Source:             p.Source,
		})
	}
	return out
}
