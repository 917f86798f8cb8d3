// Tests for content.go: release date parsing, image detection and slug derivation.
package models

import (
	"testing"
	"time"
)

func TestContentItem_ReleaseTime(t *testing.T) {
	tests := []struct {
		name   string
		date   string
		want   time.Time
		wantOK bool
	}{
		{"plain date", "2026-10-13", time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC), true},
		{"rfc3339", "2026-10-13T18:30:00Z", time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "not-a-date", time.Time{}, false},
		{"year only", "2026", time.Time{}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ContentItem{ReleaseDate: tt.date}.ReleaseTime()
			if ok != tt.wantOK {
				t.Fatalf("ReleaseTime(%q) ok = %v, want %v", tt.date, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ReleaseTime(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestContentItem_HasImage(t *testing.T) {
	if (ContentItem{}).HasImage() {
		t.Error("Expected item without paths to have no image")
	}
	if !(ContentItem{PosterPath: "/p.jpg"}).HasImage() {
		t.Error("Expected poster to count as image")
	}
	if !(ContentItem{BackdropPath: "/b.jpg"}).HasImage() {
		t.Error("Expected backdrop to count as image")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		year  int
		want  string
	}{
		{"Pushpa 2: The Rule", 2024, "pushpa-2-the-rule-2024"},
		{"Amélie", 2001, "amelie-2001"},
		{"  --Spaced   Out--  ", 0, "spaced-out"},
		{"", 2026, "2026"},
		{"Shōgun", 2024, "shogun-2024"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.want, func(t *testing.T) {
			if got := Slugify(tt.title, tt.year); got != tt.want {
				t.Errorf("Slugify(%q, %d) = %q, want %q", tt.title, tt.year, got, tt.want)
			}
		})
	}
}

func TestContentItem_EnsureSlug(t *testing.T) {
	item := ContentItem{Title: "Devara Part 1", ReleaseDate: "2024-09-27"}
	item.EnsureSlug()
	if item.Slug != "devara-part-1-2024" {
		t.Errorf("Expected derived slug, got %q", item.Slug)
	}

	keep := ContentItem{Title: "X", Slug: "custom"}
	keep.EnsureSlug()
	if keep.Slug != "custom" {
		t.Errorf("Expected existing slug to be kept, got %q", keep.Slug)
	}
}
