package models

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ContentItem represents one movie, TV show or anime entry returned by the API.
// Rating and Popularity are zero when the API did not provide them.
type ContentItem struct {
	ID           int         `json:"id"`
	Slug         string      `json:"slug,omitempty"`
	Title        string      `json:"title"`
	Overview     string      `json:"overview,omitempty"`
	ContentType  ContentType `json:"content_type"`
	ReleaseDate  string      `json:"release_date,omitempty"`
	Genres       []string    `json:"genres,omitempty"`
	Languages    []string    `json:"languages,omitempty"`
	PosterPath   string      `json:"poster_path,omitempty"`
	BackdropPath string      `json:"backdrop_path,omitempty"`
	Rating       float64     `json:"rating,omitempty"`
	Popularity   float64     `json:"popularity,omitempty"`

	// Derived by the release pipeline, never read from the API.
	Source          string  `json:"source,omitempty"`
	Weight          int     `json:"weight,omitempty"`
	NewReleaseScore float64 `json:"new_release_score,omitempty"`
	FinalScore      float64 `json:"final_score,omitempty"`
}

// ReleaseTime parses ReleaseDate as a UTC calendar date. Both plain dates
// ("2026-10-13") and RFC 3339 timestamps are accepted; only the date part is kept.
func (c ContentItem) ReleaseTime() (time.Time, bool) {
	s := strings.TrimSpace(c.ReleaseDate)
	if len(s) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, s[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Year returns the release year, or 0 when the release date is unknown
func (c ContentItem) Year() int {
	t, ok := c.ReleaseTime()
	if !ok {
		return 0
	}
	return t.Year()
}

// HasImage reports whether the item carries a poster or backdrop
func (c ContentItem) HasImage() bool {
	return c.PosterPath != "" || c.BackdropPath != ""
}

// EnsureSlug fills Slug from the title and release year when the API omitted it
func (c *ContentItem) EnsureSlug() {
	if c.Slug != "" {
		return
	}
	c.Slug = Slugify(c.Title, c.Year())
}

// Slugify builds a URL-safe slug such as "pushpa-2-the-rule-2024".
// Accents are folded to their base letters and every other non-alphanumeric
// run collapses to a single dash.
func Slugify(title string, year int) string {
	// Chained transformers keep internal buffers, so one is built per call.
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripper, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")

	if year > 0 {
		if slug == "" {
			return strconv.Itoa(year)
		}
		slug += "-" + strconv.Itoa(year)
	}
	return slug
}
