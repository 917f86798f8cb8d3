package testutil

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// Item is a raw API content record used to build response fixtures
type Item map[string]any

// DaysAgo formats the calendar day that lies days before ref (negative for the future)
func DaysAgo(ref time.Time, days int) string {
	return ref.UTC().AddDate(0, 0, -days).Format(time.DateOnly)
}

// NewItem returns a record that passes the release filter when releaseDate is in the window.
// Titles avoid the substring "te" so fixtures do not pick up the regional boost by accident.
func NewItem(id int, title, contentType, releaseDate string) Item {
	return Item{
		"id":           id,
		"title":        title,
		"content_type": contentType,
		"release_date": releaseDate,
		"poster_path":  "/poster.jpg",
	}
}

// With returns a copy of it with key set to value
func (it Item) With(key string, value any) Item {
	out := make(Item, len(it)+1)
	for k, v := range it {
		out[k] = v
	}
	out[key] = value
	return out
}

// RecommendationsBody builds {"recommendations": [...]}
func RecommendationsBody(items ...Item) string {
	return mustJSON(map[string]any{"recommendations": nonNil(items)})
}

// PriorityContentBody builds {"success": true, "data": {"priority_content": [...]}}
func PriorityContentBody(items ...Item) string {
	return mustJSON(map[string]any{
		"success": true,
		"data":    map[string]any{"priority_content": nonNil(items)},
	})
}

// ResultsBody builds {"results": [...]}
func ResultsBody(items ...Item) string {
	return mustJSON(map[string]any{"results": nonNil(items)})
}

// ArrayBody builds a bare JSON array
func ArrayBody(items ...Item) string {
	return mustJSON(nonNil(items))
}

// UpcomingBody builds an /upcoming-sync payload
func UpcomingBody(movies, tvSeries, anime []Item) string {
	return mustJSON(map[string]any{
		"movies":    nonNil(movies),
		"tv_series": nonNil(tvSeries),
		"anime":     nonNil(anime),
	})
}

// FavoritesBody builds a /user/favorites payload holding the given IDs
func FavoritesBody(ids ...int) string {
	favorites := make([]Item, 0, len(ids))
	for _, id := range ids {
		favorites = append(favorites, Item{"id": id})
	}
	return mustJSON(map[string]any{"favorites": favorites})
}

// JSONHandler answers every request with status and body
func JSONHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func nonNil(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return items
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
