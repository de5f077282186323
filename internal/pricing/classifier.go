package pricing

import "github.com/yourusername/challenge-tracker/internal/models"

// Tier thresholds in edge percent. Each tier is inclusive on its lower
// bound: an edge of exactly 10 is good, exactly 20 is hot.
const (
	GoodEdgePercent = 10.0
	HotEdgePercent  = 20.0
)

// Classify buckets an edge percentage into a value tier.
func Classify(edge float64) models.ValueTier {
	switch {
	case edge >= HotEdgePercent:
		return models.TierHot
	case edge >= GoodEdgePercent:
		return models.TierGood
	case edge > 0:
		return models.TierMild
	default:
		return models.TierNone
	}
}
