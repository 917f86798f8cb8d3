package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/cinebrain/releases/internal/models"
	"github.com/cinebrain/releases/internal/parser"
)

const (
	favoritesPath    = "/user/favorites"
	interactionsPath = "/interactions"
)

// FetchFavorites implements Client. It returns the IDs on the viewer's wishlist.
func (c *client) FetchFavorites(ctx context.Context) ([]int, error) {
	body, err := c.withRetry(ctx, "favorites", func() ([]byte, error) {
		return c.do(ctx, request{method: http.MethodGet, path: favoritesPath})
	})
	if err != nil {
		return nil, fmt.Errorf("fetch favorites: %w", err)
	}
	return parser.ParseFavoriteIDs(c.endpoint(favoritesPath, nil), body)
}

// ToggleFavorite implements Client. The interaction is posted once; it is not retried.
func (c *client) ToggleFavorite(ctx context.Context, contentID int, add bool) error {
	interaction := models.Interaction{ContentID: contentID, InteractionType: models.InteractionRemoveFavorite}
	if add {
		interaction.InteractionType = models.InteractionFavorite
	}

	payload, err := json.Marshal(interaction)
	if err != nil {
		return fmt.Errorf("encode interaction: %w", err)
	}
	if _, err := c.do(ctx, request{method: http.MethodPost, path: interactionsPath, body: payload}); err != nil {
		return fmt.Errorf("toggle favorite %d: %w", contentID, err)
	}
	return nil
}
