package analyses

import (
	"time"

	"vantage-backend/internal/orchestrate"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Analysis represents one invention disclosure novelty analysis.
// Result fields (claims, score, recommendation, patentability) are
// populated only once the analysis reaches completed.
type Analysis struct {
	ID                 string
	Title              string
	Status             string
	DisclosureFilename string
	DisclosureKey      string

	ExtractedClaims         *orchestrate.Claims
	NoveltyScore            *float64
	Recommendation          string
	Reasoning               string
	IsPatentable            *bool
	PatentabilityConfidence *float64
	MissingElements         []string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// ResultUpdate carries everything written in the terminal transition to
// completed.
type ResultUpdate struct {
	Claims                  *orchestrate.Claims
	NoveltyScore            float64
	Recommendation          string
	Reasoning               string
	IsPatentable            bool
	PatentabilityConfidence float64
	MissingElements         []string
}
