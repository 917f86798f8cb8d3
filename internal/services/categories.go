package services

import (
	"strings"
	"time"

	"github.com/cinebrain/releases/internal/client"
	"github.com/cinebrain/releases/internal/models"
)

// Category names used by the default pipeline
const (
	CategoryNewMovies      = "new_movies"
	CategoryNewTV          = "new_tv"
	CategoryAiringAnime    = "airing_anime"
	CategoryUpcoming       = "upcoming"
	CategoryTrendingMovies = "trending_movies"
)

// DefaultCategories returns the queries feeding the new-releases carousel.
// New movies are critical and fall back to trending movies. Anime and upcoming
// releases are slow to compute server-side and get the heavy timeout.
func DefaultCategories(region string, light, heavy time.Duration) []models.Category {
	trending := &models.Category{
		Name:     CategoryTrendingMovies,
		Endpoint: "/recommendations/trending",
		Params:   map[string]string{"category": "movies", "limit": "20"},
		Weight:   3,
		Timeout:  light,
	}

	return []models.Category{
		{
			Name:     CategoryNewMovies,
			Endpoint: "/recommendations/new-releases",
			Params:   newReleaseParams("movie"),
			Weight:   3,
			Critical: true,
			Fallback: trending,
			Timeout:  light,
		},
		{
			Name:     CategoryNewTV,
			Endpoint: "/recommendations/new-releases",
			Params:   newReleaseParams("tv"),
			Weight:   2,
			Timeout:  light,
		},
		{
			Name:     CategoryAiringAnime,
			Endpoint: "/recommendations/anime",
			Params:   map[string]string{"type": "airing", "limit": "20", "sort_by": "release_date"},
			Weight:   2,
			Timeout:  heavy,
		},
		{
			Name:     CategoryUpcoming,
			Endpoint: client.UpcomingPath,
			Params: map[string]string{
				"region":     strings.ToUpper(region),
				"categories": "movies,tv,anime",
				"time_range": "month",
			},
			Weight:  1,
			Timeout: heavy,
		},
	}
}

func newReleaseParams(contentType string) map[string]string {
	return map[string]string{
		"content_type": contentType,
		"limit":        "20",
		"sort_by":      "release_date",
		"date_range":   "month",
	}
}
