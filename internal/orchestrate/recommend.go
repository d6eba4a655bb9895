package orchestrate

import (
	"fmt"
	"math"

	"vantage-backend/internal/patents"
)

const highSimilarityThreshold = 70

// Recommendation is the novelty verdict for a scored patent set.
type Recommendation struct {
	NoveltyScore   float64
	Recommendation string
	Reasoning      string
}

// Recommend derives a novelty score and filing recommendation from the
// scored patents (which must be ordered highest similarity first).
//
// novelty = 100 - top_score*0.7 - 5 per patent scoring above 70,
// clamped to [0, 100]. Novelty >= 70 is pursue, >= 40 reconsider,
// anything lower reject.
func Recommend(scored []patents.Patent) Recommendation {
	if len(scored) == 0 {
		return Recommendation{
			NoveltyScore:   100,
			Recommendation: RecommendationPursue,
			Reasoning:      "No similar prior art found. Proceed with patent application.",
		}
	}

	topScore := scored[0].SimilarityScore
	highSimCount := 0
	for _, p := range scored {
		if p.SimilarityScore > highSimilarityThreshold {
			highSimCount++
		}
	}

	novelty := clamp(100-topScore*0.7-float64(highSimCount)*5, 0, 100)
	novelty = math.Round(novelty*10) / 10

	switch {
	case novelty >= 70:
		return Recommendation{
			NoveltyScore:   novelty,
			Recommendation: RecommendationPursue,
			Reasoning: fmt.Sprintf("High novelty (%.0f%%). Top match only %.0f%% similar. Strong patent potential.",
				novelty, topScore),
		}
	case novelty >= 40:
		return Recommendation{
			NoveltyScore:   novelty,
			Recommendation: RecommendationReconsider,
			Reasoning: fmt.Sprintf("Medium novelty (%.0f%%). %d highly similar patents found. Consider narrow claims.",
				novelty, highSimCount),
		}
	default:
		return Recommendation{
			NoveltyScore:   novelty,
			Recommendation: RecommendationReject,
			Reasoning: fmt.Sprintf("Low novelty (%.0f%%). Very similar prior art exists (top: %.0f%%). Consider publication instead.",
				novelty, topScore),
		}
	}
}
