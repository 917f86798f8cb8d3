package ranking

import (
	"testing"

	"github.com/cinebrain/releases/internal/models"
)

func TestSortByReleaseDate(t *testing.T) {
	items := []models.ContentItem{
		{ID: 1, Title: "Dune", ReleaseDate: released(5)},
		{ID: 2, Title: "Dhoom", ReleaseDate: released(1)},
		{ID: 3, Title: "Kantara", ReleaseDate: released(1), Languages: []string{"telugu"}},
		{ID: 4, Title: "Blank"},
		{ID: 5, Title: "Soon", ReleaseDate: released(-3)},
	}

	SortByReleaseDate(items)

	want := []int{5, 3, 2, 1, 4}
	got := itemIDs(items)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}
