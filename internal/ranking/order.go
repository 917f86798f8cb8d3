package ranking

import (
	"sort"

	"github.com/cinebrain/releases/internal/models"
)

// SortByReleaseDate orders items newest first. Items released on the same day
// put regional content first; items without a date go last. The sort is stable.
func SortByReleaseDate(items []models.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, okI := items[i].ReleaseTime()
		tj, okJ := items[j].ReleaseTime()
		if okI != okJ {
			return okI
		}
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return IsRegional(items[i]) && !IsRegional(items[j])
	})
}
