package ranking

import (
	"time"

	"github.com/cinebrain/releases/internal/models"
)

var refDate = time.Date(2026, 10, 16, 15, 4, 5, 0, time.UTC)

// released returns the release date string for an item released daysAgo days before refDate
func released(daysAgo int) string {
	return refDate.AddDate(0, 0, -daysAgo).Format(time.DateOnly)
}

func newItem(id int, ct models.ContentType, daysAgo int) models.ContentItem {
	return models.ContentItem{
		ID:          id,
		Title:       "Show",
		ContentType: ct,
		ReleaseDate: released(daysAgo),
		PosterPath:  "/p.jpg",
	}
}

func itemIDs(items []models.ContentItem) []int {
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}
