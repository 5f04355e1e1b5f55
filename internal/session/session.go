// Package session holds the authenticated session: the bearer token, the
// current user, and the readiness flag that gates every fetch.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cristianoliveira/retroshelf/internal/api"
	"github.com/cristianoliveira/retroshelf/internal/kvstore"
	"github.com/cristianoliveira/retroshelf/internal/logging"
)

// TokenKey is the kvstore key holding the session token.
const TokenKey = "auth:token"

// ErrNotLoggedIn is returned by operations that need a token when there is none.
var ErrNotLoggedIn = errors.New("not logged in")

// Authenticator is the subset of the REST client the session drives.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	RefreshToken(ctx context.Context) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*api.User, error)
}

// Session is safe for concurrent use.
type Session struct {
	mu          sync.RWMutex
	kv          kvstore.Store
	auth        Authenticator
	logger      logging.Logger
	token       string
	user        *api.User
	initialized bool
}

var _ api.TokenSource = (*Session)(nil)

// New creates an uninitialized session. Call Initialize before fetching.
func New(kv kvstore.Store, auth Authenticator, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.Noop()
	}
	return &Session{kv: kv, auth: auth, logger: logger}
}

// Initialize restores the stored token and refreshes it. The session is
// marked initialized whatever happens; the returned error is informational.
// A token the backend rejects is dropped; one that cannot be checked
// because the backend is unreachable is kept.
func (s *Session) Initialize(ctx context.Context) error {
	defer s.markInitialized()

	token, ok, err := s.kv.Get(TokenKey)
	if err != nil {
		s.logger.Warn("session token unreadable", "error", err)
		return fmt.Errorf("read session token: %w", err)
	}
	if !ok || token == "" {
		return nil
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		if api.Classify(err) == api.KindUnauthorized {
			s.ClearLocal()
		}
		return err
	}
	return nil
}

func (s *Session) markInitialized() {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
}

// Login exchanges credentials for a token and stores it.
func (s *Session) Login(ctx context.Context, email, password string) (*api.User, error) {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	s.apply(resp)
	s.logger.Info("logged in", "user", resp.User.Slug)
	return s.User(), nil
}

// Refresh trades the current token for a fresh one.
func (s *Session) Refresh(ctx context.Context) error {
	if s.Token() == "" {
		return ErrNotLoggedIn
	}
	resp, err := s.auth.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	s.apply(resp)
	return nil
}

// Logout revokes the token on the backend and forgets it locally. The local
// token is cleared even when the backend call fails.
func (s *Session) Logout(ctx context.Context) error {
	if s.Token() == "" {
		return nil
	}
	err := s.auth.Logout(ctx)
	s.ClearLocal()
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// ClearLocal forgets the token without calling the backend. Used when the
// backend already rejected the token.
func (s *Session) ClearLocal() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	if err := s.kv.Delete(TokenKey); err != nil {
		s.logger.Debug("session token delete failed", "error", err)
	}
}

// Whoami fetches the current user from the backend.
func (s *Session) Whoami(ctx context.Context) (*api.User, error) {
	if s.Token() == "" {
		return nil, ErrNotLoggedIn
	}
	user, err := s.auth.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("whoami: %w", err)
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return s.User(), nil
}

func (s *Session) apply(resp *api.AuthResponse) {
	user := resp.User
	s.mu.Lock()
	s.token = resp.Token
	s.user = &user
	s.mu.Unlock()
	if err := s.kv.Set(TokenKey, resp.Token); err != nil {
		// The session still works for this process.
		s.logger.Debug("session token save failed", "error", err)
	}
}

// Token implements api.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Initialized implements query.Gate.
func (s *Session) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// User returns a copy of the current user, or nil.
func (s *Session) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}
