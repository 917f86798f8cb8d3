package ranking

import (
	"math"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/cinebrain/releases/internal/models"
)

const (
	// WindowFutureDays is how far ahead of the reference date an item may be released.
	WindowFutureDays = 30
	// WindowPastDays is how long after release an item still counts as new.
	WindowPastDays = 45

	highRatingThreshold = 8.0
	highRatingBonus     = 20.0
	popularThreshold    = 50.0
	popularBonus        = 15.0
	regionalBonus       = 25.0
)

// regionalMarkers identify Telugu-language content, which gets a fixed boost.
var regionalMarkers = []string{"telugu", "tollywood", "te"}

// DaysSinceRelease returns referenceDate - releaseDate in whole calendar days (UTC).
// Negative values mean the item is not released yet.
func DaysSinceRelease(item models.ContentItem, referenceDate time.Time) (int, bool) {
	release, ok := item.ReleaseTime()
	if !ok {
		return 0, false
	}
	ref := truncateDay(referenceDate)
	return int(math.Round(ref.Sub(release).Hours() / 24)), true
}

// InWindow reports whether daysDiff falls inside the new release window.
func InWindow(daysDiff int) bool {
	return daysDiff >= -WindowFutureDays && daysDiff <= WindowPastDays
}

// Eligible reports whether item can be shown at all: it needs a title,
// an image and a parsable release date inside the window.
func Eligible(item models.ContentItem, referenceDate time.Time) bool {
	if strings.TrimSpace(item.Title) == "" || !item.HasImage() {
		return false
	}
	days, ok := DaysSinceRelease(item, referenceDate)
	return ok && InWindow(days)
}

// RecencyScore is the base score for an item released daysDiff days ago.
func RecencyScore(daysDiff int) float64 {
	switch {
	case daysDiff < 0:
		return 120 + math.Abs(float64(daysDiff))
	case daysDiff <= 7:
		return 100
	case daysDiff <= 14:
		return 85
	case daysDiff <= 30:
		return 70
	case daysDiff <= 45:
		return 50
	default:
		return 0
	}
}

// IsRegional reports whether item matches the Telugu-language heuristic, either
// through its language list or a marker contained in the title.
func IsRegional(item models.ContentItem) bool {
	for _, lang := range item.Languages {
		if lo.Contains(regionalMarkers, strings.ToLower(strings.TrimSpace(lang))) {
			return true
		}
	}
	title := strings.ToLower(item.Title)
	return lo.SomeBy(regionalMarkers, func(marker string) bool {
		return strings.Contains(title, marker)
	})
}

// NewReleaseScore scores one item in isolation. daysDiff must come from DaysSinceRelease.
func NewReleaseScore(item models.ContentItem, daysDiff int) float64 {
	score := RecencyScore(daysDiff)
	if item.Rating >= highRatingThreshold {
		score += highRatingBonus
	}
	if item.Popularity > popularThreshold {
		score += popularBonus
	}
	if IsRegional(item) {
		score += regionalBonus
	}
	return score
}

// FilterAndScore returns the eligible items with NewReleaseScore set, in input order.
// The input slice is not modified.
func FilterAndScore(items []models.ContentItem, referenceDate time.Time) []models.ContentItem {
	out := make([]models.ContentItem, 0, len(items))
	for _, item := range items {
		if !Eligible(item, referenceDate) {
			continue
		}
		days, _ := DaysSinceRelease(item, referenceDate)
		item.NewReleaseScore = NewReleaseScore(item, days)
		out = append(out, item)
	}
	return out
}

// FinalScore combines the isolated score with the weight of the producing source.
func FinalScore(item models.ContentItem) float64 {
	score := item.NewReleaseScore + float64(item.Weight)*10
	score += math.Min(15, item.Rating*1.5)
	score += math.Min(10, item.Popularity/30)
	if item.HasImage() {
		score += 5
	}
	return score
}

// ApplyFinalScores sets FinalScore on every item in place.
func ApplyFinalScores(items []models.ContentItem) {
	for i := range items {
		items[i].FinalScore = FinalScore(items[i])
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
