package testutil

import (
	"context"

	"github.com/cinebrain/releases/internal/models"
)

// CollectCategoryResults drains a category stream into a map keyed by category name.
// This is a test helper and should not be used in production code.
func CollectCategoryResults(ctx context.Context, stream <-chan models.CategoryResult) (map[string]models.CategoryResult, error) {
	results := make(map[string]models.CategoryResult)
	for {
		select {
		case result, ok := <-stream:
			if !ok {
				return results, nil
			}
			results[result.Category.Name] = result
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
