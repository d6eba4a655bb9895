package analyses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"vantage-backend/internal/extract"
	"vantage-backend/internal/orchestrate"
	"vantage-backend/internal/patents"
	"vantage-backend/internal/reports"
	"vantage-backend/internal/shared/metrics"
	"vantage-backend/internal/shared/storage/object"
	"vantage-backend/internal/shared/telemetry"
	"vantage-backend/internal/shared/util"
)

const disclosureNamespace = "disclosures"

// WorkflowRunner executes the novelty analysis pipeline.
type WorkflowRunner interface {
	Run(ctx context.Context, analysisID, documentText string) (orchestrate.Result, error)
}

// Service contains business logic for analyses.
type Service struct {
	Repo     Repo
	Patents  patents.Repo
	Store    object.ObjectStore
	Workflow WorkflowRunner
	Reports  *reports.Generator
	// Logs, when set, is cleaned up alongside the analysis on delete.
	Logs orchestrate.LogRepo
}

// Create stores the uploaded disclosure, records the analysis in
// processing, and kicks off the workflow asynchronously.
func (s *Service) Create(ctx context.Context, fileName, title string, r io.Reader) (Analysis, error) {
	if fileName == "" {
		return Analysis{}, errors.New("fileName is required")
	}
	switch util.FileExtension(fileName) {
	case ".pdf", ".docx":
	default:
		return Analysis{}, ErrUnsupportedType
	}

	key, size, mimeType, err := s.Store.Save(ctx, disclosureNamespace, fileName, r)
	if err != nil {
		return Analysis{}, fmt.Errorf("save disclosure: %w", err)
	}
	if size == 0 {
		_ = s.Store.Delete(ctx, key)
		return Analysis{}, ErrEmptyFile
	}

	text, extractErr := extract.Text(ctx, s.Store, key, mimeType, fileName)
	if title = strings.TrimSpace(title); title == "" {
		if extractErr == nil {
			title = extract.Title(text, fileName)
		} else {
			title = util.TrimExtension(fileName)
		}
	}

	now := time.Now().UTC()
	analysis := Analysis{
		ID:                 uuid.NewString(),
		Title:              title,
		Status:             StatusProcessing,
		DisclosureFilename: fileName,
		DisclosureKey:      key,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		_ = s.Store.Delete(ctx, key)
		return Analysis{}, err
	}

	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.status", map[string]any{
		"request_id":  requestIDFromContext(ctx),
		"analysis_id": analysis.ID,
		"status":      StatusProcessing,
		"file_name":   fileName,
		"size_bytes":  size,
	})

	go s.runWorkflow(backgroundWithRequestID(ctx), analysis.ID, text, extractErr)

	return analysis, nil
}

// Get returns an analysis by ID.
func (s *Service) Get(ctx context.Context, id string) (Analysis, error) {
	if id == "" {
		return Analysis{}, errors.New("id is required")
	}
	return s.Repo.GetByID(ctx, id)
}

// PatentsFor returns the scored prior-art matches of an analysis,
// highest similarity first.
func (s *Service) PatentsFor(ctx context.Context, id string) ([]patents.Patent, error) {
	return s.Patents.ListByAnalysis(ctx, id)
}

// List returns one page of analyses (newest first) and the total count.
// Page starts at 1; limit is clamped to 1..50 with a default of 10.
func (s *Service) List(ctx context.Context, page, limit int, status string) ([]Analysis, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return s.Repo.List(ctx, ListFilter{
		Status: status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
}

// Delete removes the analysis, its stored disclosure, and its matches.
func (s *Service) Delete(ctx context.Context, id string) error {
	analysis, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Store.Delete(ctx, analysis.DisclosureKey); err != nil {
		telemetry.Warn("analysis.delete_file", map[string]any{
			"analysis_id": id,
			"error":       err.Error(),
		})
	}
	if err := s.Patents.DeleteForAnalysis(ctx, id); err != nil {
		return err
	}
	if s.Logs != nil {
		if err := s.Logs.DeleteForAnalysis(ctx, id); err != nil {
			telemetry.Warn("analysis.delete_logs", map[string]any{
				"analysis_id": id,
				"error":       err.Error(),
			})
		}
	}
	return s.Repo.Delete(ctx, id)
}

// GenerateReport renders the PDF report for a completed analysis and
// returns its download URL.
func (s *Service) GenerateReport(ctx context.Context, id string) (string, error) {
	analysis, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if analysis.Status != StatusCompleted {
		return "", ErrNotCompleted
	}

	matches, err := s.Patents.ListByAnalysis(ctx, id)
	if err != nil {
		return "", err
	}

	data := reports.Data{
		AnalysisID:     analysis.ID,
		Title:          analysis.Title,
		Recommendation: analysis.Recommendation,
		Reasoning:      analysis.Reasoning,
		Claims:         analysis.ExtractedClaims,
		Patents:        matches,
		CreatedAt:      analysis.CreatedAt,
	}
	if analysis.NoveltyScore != nil {
		data.NoveltyScore = *analysis.NoveltyScore
	}
	if analysis.IsPatentable != nil {
		pa := orchestrate.PatentabilityAssessment{
			IsPatentable:    *analysis.IsPatentable,
			MissingElements: analysis.MissingElements,
		}
		if analysis.PatentabilityConfidence != nil {
			pa.Confidence = *analysis.PatentabilityConfidence
		}
		data.Patentability = &pa
	}

	fileName, err := s.Reports.Generate(data)
	if err != nil {
		return "", fmt.Errorf("generate report: %w", err)
	}
	metrics.IncReportGenerated()
	telemetry.Info("report.generated", map[string]any{
		"request_id":  requestIDFromContext(ctx),
		"analysis_id": id,
		"file_name":   fileName,
	})
	return "/api/v1/reports/" + fileName, nil
}

func (s *Service) runWorkflow(ctx context.Context, analysisID, documentText string, extractErr error) {
	defer func() {
		if r := recover(); r != nil {
			s.failAnalysis(ctx, analysisID, fmt.Errorf("panic: %v", r), nil)
		}
	}()
	startedAt := time.Now().UTC()

	if extractErr != nil {
		s.failAnalysis(ctx, analysisID, fmt.Errorf("document parsing failed: %w", extractErr), &startedAt)
		return
	}
	if strings.TrimSpace(documentText) == "" {
		s.failAnalysis(ctx, analysisID, errors.New("document contains no extractable text"), &startedAt)
		return
	}
	if s.Workflow == nil {
		s.failAnalysis(ctx, analysisID, errors.New("missing workflow runner"), &startedAt)
		return
	}

	result, err := s.Workflow.Run(ctx, analysisID, documentText)
	if err != nil {
		s.failAnalysis(ctx, analysisID, fmt.Errorf("analysis failed: %w", err), &startedAt)
		return
	}

	if err := s.Patents.ReplaceForAnalysis(ctx, analysisID, result.ScoredPatents); err != nil {
		s.failAnalysis(ctx, analysisID, fmt.Errorf("store patents failed: %w", err), &startedAt)
		return
	}

	update := ResultUpdate{
		NoveltyScore:            result.NoveltyScore,
		Recommendation:          result.Recommendation,
		Reasoning:               result.Reasoning,
		IsPatentable:            result.Patentability.IsPatentable,
		PatentabilityConfidence: result.Patentability.Confidence,
		MissingElements:         result.Patentability.MissingElements,
	}
	if !result.SkipPriorArt {
		claims := result.Claims
		update.Claims = &claims
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.Complete(ctx, analysisID, update, completedAt); err != nil {
		s.failAnalysis(ctx, analysisID, fmt.Errorf("set analysis result failed: %w", err), &startedAt)
		return
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(durationMs(startedAt, completedAt))
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"analysis_id":       analysisID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"novelty_score":     result.NoveltyScore,
		"recommendation":    result.Recommendation,
		"duration_ms":       durationMs(startedAt, completedAt),
	})
}

func (s *Service) failAnalysis(ctx context.Context, analysisID string, err error, startedAt *time.Time) {
	failedAt := time.Now().UTC()
	if updateErr := s.Repo.Fail(context.Background(), analysisID, err.Error(), failedAt); updateErr != nil {
		telemetry.Error("analysis.fail_update", map[string]any{
			"analysis_id": analysisID,
			"error":       updateErr.Error(),
			"cause":       err.Error(),
		})
	}
	metrics.IncAnalysisFailed()
	if startedAt != nil {
		metrics.ObserveAnalysisDurationMs(durationMs(*startedAt, failedAt))
	}
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"analysis_id":       analysisID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error":             err.Error(),
	})
}

func durationMs(from, to time.Time) float64 {
	return float64(to.Sub(from).Milliseconds())
}
