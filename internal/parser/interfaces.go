package parser

import "github.com/cinebrain/releases/internal/models"

// Normalizer flattens any recognized API response body into content items
type Normalizer interface {
	Normalize(body []byte) []models.ContentItem
}
