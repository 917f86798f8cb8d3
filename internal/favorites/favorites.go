// Package favorites owns the viewer's wishlist. All reads and writes of the
// favorite ID set go through Store so concurrent handlers never lose updates.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cinebrain/releases/internal/apperrors"
	"github.com/cinebrain/releases/internal/config"
	"github.com/cinebrain/releases/internal/session"
)

// Source is the remote side of the wishlist
type Source interface {
	FetchFavorites(ctx context.Context) ([]int, error)
	ToggleFavorite(ctx context.Context, contentID int, add bool) error
}

// Store is the single owner of the favorite ID set
type Store struct {
	mu      sync.RWMutex
	ids     map[int]struct{}
	source  Source
	session session.Store
}

// NewStore creates an empty wishlist. sess may be nil, in which case every
// viewer is treated as signed in.
func NewStore(source Source, sess session.Store) *Store {
	return &Store{
		ids:     make(map[int]struct{}),
		source:  source,
		session: sess,
	}
}

// Seed replaces the set with the server's wishlist. Anonymous viewers get an
// empty set without a request. On an auth failure the set is emptied and the
// session credentials are cleared.
func (s *Store) Seed(ctx context.Context) error {
	logger := config.GetLogger()

	if s.session != nil && !session.IsAuthenticated(s.session) {
		s.Clear()
		return nil
	}

	ids, err := s.source.FetchFavorites(ctx)
	if err != nil {
		if errors.Is(err, &apperrors.ErrAuth{}) {
			s.Clear()
			if s.session != nil {
				if clearErr := s.session.ClearCredentials(); clearErr != nil {
					logger.Error().Err(clearErr).Msg("Failed to clear credentials")
				}
			}
		}
		return fmt.Errorf("seed favorites: %w", err)
	}

	next := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}

	s.mu.Lock()
	s.ids = next
	s.mu.Unlock()

	logger.Debug().Int("favorites", len(next)).Msg("Wishlist seeded")
	return nil
}

// Contains reports whether id is on the wishlist
func (s *Store) Contains(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Toggle flips id optimistically, then tells the server. When the server call
// fails the local change is reverted. It returns whether id is a favorite afterwards.
func (s *Store) Toggle(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	_, was := s.ids[id]
	s.setLocked(id, !was)
	s.mu.Unlock()

	if err := s.source.ToggleFavorite(ctx, id, !was); err != nil {
		s.mu.Lock()
		// Only undo our own change; a later toggle may already have moved it.
		if _, now := s.ids[id]; now == !was {
			s.setLocked(id, was)
		}
		s.mu.Unlock()

		if errors.Is(err, &apperrors.ErrAuth{}) {
			s.Clear()
		}
		return s.Contains(id), fmt.Errorf("toggle favorite %d: %w", id, err)
	}
	return !was, nil
}

func (s *Store) setLocked(id int, favorite bool) {
	if favorite {
		s.ids[id] = struct{}{}
	} else {
		delete(s.ids, id)
	}
}

// Clear empties the wishlist, for sign out
func (s *Store) Clear() {
	s.mu.Lock()
	s.ids = make(map[int]struct{})
	s.mu.Unlock()
}

// IDs returns the favorite IDs in ascending order
func (s *Store) IDs() []int {
	s.mu.RLock()
	ids := make([]int, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Ints(ids)
	return ids
}

// Len returns the number of favorites
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
