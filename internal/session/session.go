// Package session persists the viewer's client state: the auth token, the cached
// user profile and small UI flags. Every value is stored as JSON.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/cinebrain/releases/internal/config"
	"github.com/cinebrain/releases/internal/models"
)

const (
	tokenKey   = "auth_token"
	userKey    = "user"
	flagPrefix = "flag:"

	// FlagShowLogoutToast asks the next load to tell the viewer they were signed out
	FlagShowLogoutToast = "show_logout_toast"
)

// Store is the persisted session state. Implementations are safe for concurrent use.
type Store interface {
	Token() string
	SetToken(token string) error
	User() (models.User, bool)
	SetUser(user models.User) error
	Flag(name string) bool
	SetFlag(name string, value bool) error
	// ClearCredentials removes the token and the cached user. Flags are kept.
	ClearCredentials() error
	Close() error
}

// kv is the raw key-value backend behind a Store
type kv interface {
	get(key string) ([]byte, bool, error)
	set(key string, value []byte) error
	delete(keys ...string) error
	close() error
}

// store implements Store over a kv backend
type store struct {
	mu      sync.Mutex
	backend kv
}

func newStore(backend kv) *store {
	return &store{backend: backend}
}

func (s *store) load(key string, v any) bool {
	data, ok, err := s.backend.get(key)
	if err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("key", key).Msg("Failed to read session value")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("key", key).Msg("Discarding unreadable session value")
		return false
	}
	return true
}

func (s *store) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session value %s: %w", key, err)
	}
	if err := s.backend.set(key, data); err != nil {
		return fmt.Errorf("store session value %s: %w", key, err)
	}
	return nil
}

func (s *store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var token string
	s.load(tokenKey, &token)
	return token
}

func (s *store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" {
		return s.backend.delete(tokenKey)
	}
	return s.save(tokenKey, token)
}

func (s *store) User() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var user models.User
	ok := s.load(userKey, &user)
	return user, ok
}

func (s *store) SetUser(user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(userKey, user)
}

func (s *store) Flag(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var value bool
	s.load(flagPrefix+name, &value)
	return value
}

func (s *store) SetFlag(name string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !value {
		return s.backend.delete(flagPrefix + name)
	}
	return s.save(flagPrefix+name, true)
}

func (s *store) ClearCredentials() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.delete(tokenKey, userKey)
}

func (s *store) Close() error {
	return s.backend.close()
}

// IsAuthenticated reports whether s holds a token
func IsAuthenticated(s Store) bool {
	return s.Token() != ""
}

// ConsumeFlag returns the flag value and clears it, for one-shot UI notices
func ConsumeFlag(s Store, name string) bool {
	if !s.Flag(name) {
		return false
	}
	if err := s.SetFlag(name, false); err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("flag", name).Msg("Failed to clear session flag")
	}
	return true
}

// OnAuthFailure returns the handler to run when the API rejects the token:
// credentials are cleared and the next load shows the logout notice.
func OnAuthFailure(s Store) func() {
	return func() {
		logger := config.GetLogger()
		if err := errors.Join(s.ClearCredentials(), s.SetFlag(FlagShowLogoutToast, true)); err != nil {
			logger.Error().Err(err).Msg("Failed to reset session after auth failure")
			return
		}
		logger.Info().Msg("Session credentials cleared after auth failure")
	}
}
