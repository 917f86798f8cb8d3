package models

import "time"

// Category describes one remote query feeding the release pipeline
type Category struct {
	Name     string
	Endpoint string
	Params   map[string]string
	// Weight is the source priority folded into the final score
	Weight int
	// Critical categories fall back to Fallback once retries are exhausted
	Critical bool
	Fallback *Category
	// Timeout overrides the client default for expensive queries
	Timeout time.Duration
	// Authenticated marks personalized endpoints whose cache lines differ per viewer
	Authenticated bool
}

// CategoryResult is the settled outcome of fetching one category.
// Exactly one of Items or Err is meaningful.
type CategoryResult struct {
	Category Category
	Items    []ContentItem
	Err      error
	// FromFallback is set when the items came from the category's fallback query
	FromFallback bool
}
