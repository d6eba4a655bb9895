package patents

import "context"

// Repo stores scored prior-art matches per analysis.
type Repo interface {
	// ReplaceForAnalysis swaps the full match set for an analysis.
	ReplaceForAnalysis(ctx context.Context, analysisID string, matches []Patent) error
	// ListByAnalysis returns matches ordered by similarity score, highest first.
	ListByAnalysis(ctx context.Context, analysisID string) ([]Patent, error)
	DeleteForAnalysis(ctx context.Context, analysisID string) error
}
