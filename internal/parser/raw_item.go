package parser

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/cinebrain/releases/internal/models"
)

// rawItem accepts every field spelling the recommendation endpoints are known to use.
type rawItem struct {
	ID               flexInt     `json:"id"`
	ContentID        flexInt     `json:"content_id"`
	Slug             string      `json:"slug"`
	Title            string      `json:"title"`
	Name             string      `json:"name"`
	OriginalTitle    string      `json:"original_title"`
	Overview         string      `json:"overview"`
	Synopsis         string      `json:"synopsis"`
	ContentType      string      `json:"content_type"`
	Type             string      `json:"type"`
	MediaType        string      `json:"media_type"`
	ReleaseDate      string      `json:"release_date"`
	FirstAirDate     string      `json:"first_air_date"`
	Genres           flexStrings `json:"genres"`
	Languages        flexStrings `json:"languages"`
	OriginalLanguage string      `json:"original_language"`
	PosterPath       string      `json:"poster_path"`
	PosterURL        string      `json:"poster_url"`
	BackdropPath     string      `json:"backdrop_path"`
	BackdropURL      string      `json:"backdrop_url"`
	Rating           flexFloat   `json:"rating"`
	VoteAverage      flexFloat   `json:"vote_average"`
	Popularity       flexFloat   `json:"popularity"`
}

// toContentItem converts the raw record. Records without a positive ID are rejected
// because they cannot be deduplicated or favorited.
func (r rawItem) toContentItem(fallbackType models.ContentType) (models.ContentItem, bool) {
	id := int(r.ID)
	if id <= 0 {
		id = int(r.ContentID)
	}
	if id <= 0 {
		return models.ContentItem{}, false
	}

	ct := models.ParseContentType(firstNonEmpty(r.ContentType, r.MediaType, r.Type))
	if ct == models.ContentTypeUnknown {
		ct = fallbackType
	}

	languages := make([]string, 0, len(r.Languages)+1)
	for _, l := range r.Languages {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			languages = append(languages, l)
		}
	}
	if len(languages) == 0 && r.OriginalLanguage != "" {
		languages = append(languages, strings.ToLower(r.OriginalLanguage))
	}

	item := models.ContentItem{
		ID:           id,
		Slug:         r.Slug,
		Title:        strings.TrimSpace(firstNonEmpty(r.Title, r.Name, r.OriginalTitle)),
		Overview:     CleanOverview(firstNonEmpty(r.Overview, r.Synopsis)),
		ContentType:  ct,
		ReleaseDate:  firstNonEmpty(r.ReleaseDate, r.FirstAirDate),
		Genres:       []string(r.Genres),
		Languages:    languages,
		PosterPath:   firstNonEmpty(r.PosterPath, r.PosterURL),
		BackdropPath: firstNonEmpty(r.BackdropPath, r.BackdropURL),
		Rating:       float64(r.Rating),
		Popularity:   float64(r.Popularity),
	}
	if item.Rating == 0 {
		item.Rating = float64(r.VoteAverage)
	}
	item.EnsureSlug()
	return item, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// flexInt decodes integers that may arrive as numbers or numeric strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexInt(int(v))
		return nil
	}
	*f = 0
	return nil
}

// flexFloat decodes floats that may arrive as numbers or numeric strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexStrings decodes a list given as strings, as objects with a "name" field,
// or as a single comma separated string.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = nil
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				*f = append(*f, part)
			}
		}
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(b, &elems); err != nil {
		return nil
	}
	for _, elem := range elems {
		var s string
		if err := json.Unmarshal(elem, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				*f = append(*f, s)
			}
			continue
		}
		var named struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(elem, &named); err == nil && named.Name != "" {
			*f = append(*f, named.Name)
		}
	}
	return nil
}
