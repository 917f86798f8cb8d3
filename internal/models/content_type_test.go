// Tests for content_type.go: ContentType String() and ParseContentType() aliases.
package models

import "testing"

func TestContentType_String(t *testing.T) {
	tests := []struct {
		name string
		ct   ContentType
		want string
	}{
		{"movie", ContentTypeMovie, "movie"},
		{"tv", ContentTypeTV, "tv"},
		{"anime", ContentTypeAnime, "anime"},
		{"unknown", ContentTypeUnknown, "unknown"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ct.String(); got != tt.want {
				t.Errorf("ContentType(%q).String() = %q, want %q", string(tt.ct), got, tt.want)
			}
		})
	}
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		input string
		want  ContentType
	}{
		{"movie", ContentTypeMovie},
		{"Movies", ContentTypeMovie},
		{"tv", ContentTypeTV},
		{"tv_series", ContentTypeTV},
		{"series", ContentTypeTV},
		{" Show ", ContentTypeTV},
		{"anime", ContentTypeAnime},
		{"ANIME", ContentTypeAnime},
		{"podcast", ContentTypeUnknown},
		{"", ContentTypeUnknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseContentType(tt.input); got != tt.want {
				t.Errorf("ParseContentType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
