package models

// InteractionType is the kind of user interaction posted to /interactions
type InteractionType string

const (
	InteractionFavorite       InteractionType = "favorite"
	InteractionRemoveFavorite InteractionType = "remove_favorite"
)

// Interaction is the request body for POST /interactions
type Interaction struct {
	ContentID       int             `json:"content_id"`
	InteractionType InteractionType `json:"interaction_type"`
}

// FavoritesResponse is the payload of GET /user/favorites
type FavoritesResponse struct {
	Favorites []ContentItem `json:"favorites"`
}

// User is the cached profile of the signed-in viewer
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}
