package analyses

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"vantage-backend/internal/patents"
	"vantage-backend/internal/shared/server/middleware"
	"vantage-backend/internal/shared/server/respond"
	"vantage-backend/internal/shared/telemetry"
	"vantage-backend/internal/shared/util"
)

// maxUploadBytes caps disclosure uploads at 10MB.
const maxUploadBytes = 10 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc        *Service
	ReportsDir string
	limiter    *pollLimiter
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, reportsDir string) *Handler {
	return &Handler{
		Svc:        svc,
		ReportsDir: reportsDir,
		limiter:    newPollLimiter(pollLimitWindow, nil),
	}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.createAnalysis)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.DELETE("/analyses/:id", h.deleteAnalysis)
	rg.POST("/analyses/:id/report", h.generateReport)
	rg.GET("/reports/:filename", h.downloadReport)
}

func (h *Handler) createAnalysis(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	file, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "a PDF or DOCX file is required", nil)
		return
	}
	title := c.PostForm("title")

	src, err := file.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file", nil)
		return
	}
	defer src.Close()

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	analysis, err := h.Svc.Create(ctx, filepath.Base(file.Filename), title, src)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusBadRequest, "unsupported_file_type", "only PDF and DOCX files are supported", nil)
		case errors.Is(err, ErrEmptyFile):
			respond.Error(c, http.StatusBadRequest, "validation_error", "uploaded file is empty", nil)
		default:
			telemetry.Error("analysis.create", map[string]any{"error": err.Error()})
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create analysis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, h.analysisResponse(analysis, nil, false))
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysisID := c.Param("id")

	if !h.limiter.Allow(c.ClientIP(), analysisID) {
		c.Header("Retry-After", strconv.Itoa(h.limiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "polling too frequently, retry later", nil)
		return
	}

	analysis, err := h.Svc.Get(c.Request.Context(), analysisID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	var matches []patents.Patent
	if analysis.Status == StatusCompleted {
		matches, err = h.Svc.PatentsFor(c.Request.Context(), analysisID)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
			return
		}
	}

	respond.OK(c, h.analysisResponse(analysis, matches, true))
}

func (h *Handler) listAnalyses(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	status := c.Query("status")

	items, total, err := h.Svc.List(c.Request.Context(), page, limit, status)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	data := make([]gin.H, 0, len(items))
	for _, a := range items {
		data = append(data, h.analysisResponse(a, nil, false))
	}
	respond.OK(c, gin.H{
		"data":  data,
		"total": total,
		"page":  page,
		"limit": limit,
		"pages": (total + limit - 1) / limit,
	})
}

func (h *Handler) deleteAnalysis(c *gin.Context) {
	err := h.Svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete analysis", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) generateReport(c *gin.Context) {
	reportURL, err := h.Svc.GenerateReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		case errors.Is(err, ErrNotCompleted):
			respond.Error(c, http.StatusBadRequest, "not_completed", "analysis not completed yet", nil)
		default:
			telemetry.Error("report.generate", map[string]any{
				"analysis_id": c.Param("id"),
				"error":       err.Error(),
			})
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate report", nil)
		}
		return
	}

	respond.OK(c, gin.H{
		"reportUrl": reportURL,
		"expiresAt": nil,
	})
}

func (h *Handler) downloadReport(c *gin.Context) {
	fileName, err := util.SanitizeFileName(c.Param("filename"))
	if err != nil || !strings.HasSuffix(fileName, ".pdf") {
		respond.Error(c, http.StatusNotFound, "not_found", "report not found", nil)
		return
	}

	path := filepath.Join(h.ReportsDir, fileName)
	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(path, fileName)
}

// analysisResponse builds the JSON view of an analysis. Result fields
// appear only on completed analyses; failed ones expose reasoning.
func (h *Handler) analysisResponse(a Analysis, matches []patents.Patent, detail bool) gin.H {
	resp := gin.H{
		"id":     a.ID,
		"title":  a.Title,
		"status": a.Status,
		"disclosure": gin.H{
			"filename":   a.DisclosureFilename,
			"uploadedAt": a.CreatedAt,
		},
		"createdAt": a.CreatedAt,
		"updatedAt": a.UpdatedAt,
	}
	if a.CompletedAt != nil {
		resp["completedAt"] = a.CompletedAt
	}

	switch a.Status {
	case StatusCompleted:
		if a.NoveltyScore != nil {
			resp["noveltyScore"] = *a.NoveltyScore
		}
		resp["recommendation"] = a.Recommendation
		if detail {
			resp["reasoning"] = a.Reasoning
			if a.ExtractedClaims != nil {
				resp["extractedClaims"] = a.ExtractedClaims
			}
			if matches == nil {
				matches = []patents.Patent{}
			}
			resp["patents"] = matches
			if a.IsPatentable != nil {
				pa := gin.H{"isPatentable": *a.IsPatentable}
				if a.PatentabilityConfidence != nil {
					pa["confidence"] = *a.PatentabilityConfidence
				}
				if len(a.MissingElements) > 0 {
					pa["missingElements"] = a.MissingElements
				}
				resp["patentabilityAssessment"] = pa
			}
		}
	case StatusFailed:
		if detail {
			resp["reasoning"] = a.Reasoning
		}
	}

	return resp
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}
