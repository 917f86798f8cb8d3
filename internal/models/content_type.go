package models

import "strings"

// ContentType identifies the kind of media a ContentItem represents
type ContentType string

const (
	ContentTypeUnknown ContentType = ""
	ContentTypeMovie   ContentType = "movie"
	ContentTypeTV      ContentType = "tv"
	ContentTypeAnime   ContentType = "anime"
)

// AllContentTypes lists the known content types in display priority order
var AllContentTypes = []ContentType{ContentTypeMovie, ContentTypeTV, ContentTypeAnime}

// String returns the string representation of the content type
func (c ContentType) String() string {
	if c == ContentTypeUnknown {
		return "unknown"
	}
	return string(c)
}

// ParseContentType converts an API content type string to ContentType.
// The API is inconsistent about naming TV content, so several aliases are accepted.
func ParseContentType(s string) ContentType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies", "film":
		return ContentTypeMovie
	case "tv", "series", "tv_series", "tv_show", "show", "shows":
		return ContentTypeTV
	case "anime":
		return ContentTypeAnime
	default:
		return ContentTypeUnknown
	}
}
