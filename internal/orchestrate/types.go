package orchestrate

import "vantage-backend/internal/patents"

// Recommendation values produced by the workflow.
const (
	RecommendationPursue     = "pursue"
	RecommendationReconsider = "reconsider"
	RecommendationReject     = "reject"
)

// Claims is the structured view of a disclosure extracted by the LLM.
type Claims struct {
	Title              string   `json:"title"`
	Background         string   `json:"background"`
	Innovations        []string `json:"innovations"`
	Keywords           []string `json:"keywords"`
	IPCClassifications []string `json:"ipcClassifications"`
	TechnicalField     string   `json:"technicalField,omitempty"`
}

// PatentabilityAssessment gates the pipeline before prior-art search.
type PatentabilityAssessment struct {
	IsPatentable    bool     `json:"isPatentable"`
	Confidence      float64  `json:"confidence"`
	Reasoning       string   `json:"reasoning,omitempty"`
	MissingElements []string `json:"missingElements,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Result is the full outcome of a workflow run. ScoredPatents is
// capped at the top twenty matches, highest similarity first.
type Result struct {
	Patentability  PatentabilityAssessment
	Claims         Claims
	ScoredPatents  []patents.Patent
	NoveltyScore   float64
	Recommendation string
	Reasoning      string
	SkipPriorArt   bool
}
