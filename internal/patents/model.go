package patents

// Patent is a scored prior-art match persisted against an analysis.
type Patent struct {
	ID                  int64    `json:"-"`
	AnalysisID          string   `json:"-"`
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
