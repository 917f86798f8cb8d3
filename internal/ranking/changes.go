package ranking

import (
	"github.com/samber/lo"

	"github.com/cinebrain/releases/internal/models"
)

// DefaultChangeThreshold is the share of previous IDs that must survive a
// refresh for it to count as a silent update.
const DefaultChangeThreshold = 0.7

// Overlap returns the fraction of IDs in previous that are also present in next.
// An empty previous set has no overlap.
func Overlap(previous, next []models.ContentItem) float64 {
	if len(previous) == 0 {
		return 0
	}
	nextIDs := lo.SliceToMap(next, func(item models.ContentItem) (int, struct{}) {
		return item.ID, struct{}{}
	})
	kept := lo.CountBy(previous, func(item models.ContentItem) bool {
		_, ok := nextIDs[item.ID]
		return ok
	})
	return float64(kept) / float64(len(previous))
}

// HasSignificantChanges reports whether fewer than threshold of the previous IDs
// survive in next. Going from nothing to something is always significant.
func HasSignificantChanges(previous, next []models.ContentItem, threshold float64) bool {
	if len(previous) == 0 {
		return len(next) > 0
	}
	return Overlap(previous, next) < threshold
}
