// Package vantage is a client for the VANTAGE analysis service. It
// submits invention disclosures, polls analyses to their terminal
// state, and caches records for presentation code.
package vantage

import (
	"encoding/json"
	"time"
)

// Analysis statuses reported by the service. Transitions are monotonic:
// processing is the only initial state and completed/failed are terminal.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Disclosure references the uploaded source document.
type Disclosure struct {
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Claims is the structured view of the disclosure extracted server-side.
type Claims struct {
	Title              string   `json:"title"`
	Background         string   `json:"background"`
	Innovations        []string `json:"innovations"`
	Keywords           []string `json:"keywords"`
	IPCClassifications []string `json:"ipcClassifications"`
	TechnicalField     string   `json:"technicalField,omitempty"`
}

// PatentMatch is one scored prior-art document.
type PatentMatch struct {
	PatentID            string   `json:"patentId"`
	Title               string   `json:"title"`
	Abstract            string   `json:"abstract,omitempty"`
	Claims              []string `json:"claims,omitempty"`
	PublicationDate     string   `json:"publicationDate,omitempty"`
	Assignee            string   `json:"assignee,omitempty"`
	Inventors           []string `json:"inventors,omitempty"`
	IPCClassifications  []string `json:"ipcClassifications,omitempty"`
	SimilarityScore     float64  `json:"similarityScore"`
	OverlappingConcepts []string `json:"overlappingConcepts,omitempty"`
	KeyDifferences      []string `json:"keyDifferences,omitempty"`
	Source              string   `json:"source,omitempty"`
}

// PatentabilityAssessment gates whether prior-art search was run.
type PatentabilityAssessment struct {
	IsPatentable    bool     `json:"isPatentable"`
	Confidence      float64  `json:"confidence"`
	MissingElements []string `json:"missingElements,omitempty"`
}

// Result holds the payload of a completed analysis.
type Result struct {
	ExtractedClaims *Claims                  `json:"extractedClaims,omitempty"`
	Patents         []PatentMatch            `json:"patents"`
	NoveltyScore    float64                  `json:"noveltyScore"`
	Recommendation  string                   `json:"recommendation"`
	Reasoning       string                   `json:"reasoning"`
	Patentability   *PatentabilityAssessment `json:"patentabilityAssessment,omitempty"`
}

// Analysis is the client-side view of one analysis record. Result is
// non-nil exactly when Status is completed; a failed analysis carries
// the failure description in Reasoning and no Result.
type Analysis struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Disclosure  Disclosure `json:"disclosure"`
	Result      *Result    `json:"result,omitempty"`
	Reasoning   string     `json:"reasoning,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Terminal reports whether the analysis reached completed or failed.
func (a Analysis) Terminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusFailed
}

// analysisWire is the flat JSON shape the service returns.
type analysisWire struct {
	ID              string                   `json:"id"`
	Title           string                   `json:"title"`
	Status          string                   `json:"status"`
	Disclosure      Disclosure               `json:"disclosure"`
	ExtractedClaims *Claims                  `json:"extractedClaims"`
	Patents         []PatentMatch            `json:"patents"`
	NoveltyScore    *float64                 `json:"noveltyScore"`
	Recommendation  string                   `json:"recommendation"`
	Reasoning       string                   `json:"reasoning"`
	Patentability   *PatentabilityAssessment `json:"patentabilityAssessment"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
	CompletedAt     *time.Time               `json:"completedAt"`
}

// UnmarshalJSON maps the service's flat record into the tagged form:
// result fields land in Result only for completed analyses, and a
// failed analysis keeps only its reasoning.
func (a *Analysis) UnmarshalJSON(data []byte) error {
	var w analysisWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*a = Analysis{
		ID:          w.ID,
		Title:       w.Title,
		Status:      w.Status,
		Disclosure:  w.Disclosure,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
		CompletedAt: w.CompletedAt,
	}

	switch w.Status {
	case StatusCompleted:
		res := &Result{
			ExtractedClaims: w.ExtractedClaims,
			Patents:         w.Patents,
			Recommendation:  w.Recommendation,
			Reasoning:       w.Reasoning,
			Patentability:   w.Patentability,
		}
		if w.NoveltyScore != nil {
			res.NoveltyScore = *w.NoveltyScore
		}
		a.Result = res
	case StatusFailed:
		a.Reasoning = w.Reasoning
	}
	return nil
}

// AnalysisPage is one page of a list call.
type AnalysisPage struct {
	Data  []Analysis `json:"data"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Pages int        `json:"pages"`
}

// Report locates a generated report artifact.
type Report struct {
	URL       string     `json:"reportUrl"`
	ExpiresAt *time.Time `json:"expiresAt"`
}
