package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"classbook/internal/keyvalue"
	"classbook/internal/models"
	"classbook/internal/security"
)

const sessionKey = "session-store"

// SessionStore holds the logged-in user and token, persisted through the
// injected key-value backend: loaded once at start, saved after every
// change. All methods are safe for concurrent use.
type SessionStore struct {
	mu      sync.RWMutex
	session models.Session
	backend keyvalue.Store
	log     zerolog.Logger
}

func NewSessionStore(ctx context.Context, backend keyvalue.Store, log zerolog.Logger) (*SessionStore, error) {
	s := &SessionStore{backend: backend, log: log}

	raw, err := backend.Get(ctx, sessionKey)
	if errors.Is(err, keyvalue.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if err := json.Unmarshal(raw, &s.session); err != nil {
		// A corrupt record is treated as logged out rather than a fatal
		// start-up failure.
		log.Warn().Err(err).Msg("discarding unreadable session record")
		_ = backend.Remove(ctx, sessionKey)
	}
	return s, nil
}

func (s *SessionStore) persist(ctx context.Context) {
	raw, err := json.Marshal(s.session)
	if err != nil {
		s.log.Error().Err(err).Msg("encode session")
		return
	}
	if err := s.backend.Set(ctx, sessionKey, raw); err != nil {
		s.log.Error().Err(err).Msg("persist session")
	}
}

func (s *SessionStore) Login(ctx context.Context, user models.User, token, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = models.NewSession(user, token, refreshToken)
	s.persist(ctx)
}

func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Clear()
	if err := s.backend.Remove(ctx, sessionKey); err != nil {
		s.log.Error().Err(err).Msg("remove session")
	}
}

func (s *SessionStore) Session() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *SessionStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.session.User()
	if u == nil {
		return nil
	}
	copied := *u
	return &copied
}

func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// UpdateUser merges fresh user data into the session, as after a profile
// mutation.
func (s *SessionStore) UpdateUser(ctx context.Context, user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.IsAuthenticated {
		return
	}
	s.session.SetUser(user)
	s.session.Touch()
	s.persist(ctx)
}

// TokenValid applies both local rules: activity within the 24h window and
// no expired exp claim inside the token itself.
func (s *SessionStore) TokenValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.session.Valid(time.Now()) {
		return false
	}
	return !security.TokenExpired(s.session.Token)
}

func (s *SessionStore) TouchActivity(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.IsAuthenticated {
		return
	}
	s.session.Touch()
	s.persist(ctx)
}

func (s *SessionStore) IsAdmin() bool {
	u := s.User()
	return u != nil && (u.Role == models.UserRoleAdmin || u.Role == models.UserRoleSuperAdmin)
}

func (s *SessionStore) IsTeacher() bool {
	u := s.User()
	return u != nil && u.Role == models.UserRoleTeacher
}

// HasPermission compares the current user's role level against required.
func (s *SessionStore) HasPermission(required models.UserRole) bool {
	u := s.User()
	if u == nil || !u.Role.Known() {
		return false
	}
	return u.Role.Level() >= required.Level()
}
