package ranking

import (
	"sort"

	"github.com/cinebrain/releases/internal/models"
)

// TypeCap is the maximum number of items of one content type SelectTop takes
// before backfilling: ceil(maxCount / 3).
func TypeCap(maxCount int) int {
	return (maxCount + 2) / 3
}

// SelectTop picks up to maxCount items by descending FinalScore, taking at most
// TypeCap(maxCount) of any one content type. When the caps leave the selection
// short, it is backfilled with the best remaining items regardless of type.
//
// Items are returned in selection order: capped picks first, then backfill.
// Equal scores keep their input order.
func SelectTop(items []models.ContentItem, maxCount int) []models.ContentItem {
	if maxCount <= 0 || len(items) == 0 {
		return []models.ContentItem{}
	}

	sorted := make([]models.ContentItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FinalScore > sorted[j].FinalScore
	})

	limit := TypeCap(maxCount)
	perType := make(map[models.ContentType]int)
	taken := make([]bool, len(sorted))
	selected := make([]models.ContentItem, 0, maxCount)

	for i, item := range sorted {
		if len(selected) == maxCount {
			break
		}
		if perType[item.ContentType] >= limit {
			continue
		}
		perType[item.ContentType]++
		taken[i] = true
		selected = append(selected, item)
	}

	for i, item := range sorted {
		if len(selected) == maxCount {
			break
		}
		if !taken[i] {
			taken[i] = true
			selected = append(selected, item)
		}
	}

	return selected
}
