package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/starford/casedesk/internal/models"
)

// Session tracks the signed-in user and keeps the client's bearer token in
// sync with the token store.
type Session struct {
	client *Client
	store  TokenStore
	now    func() time.Time

	mu         sync.RWMutex
	user       *models.User
	loading    bool
	loggingOut bool
	onLogin    func(models.User)
	onLogout   func()
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithOnLogin is called after a successful login.
func WithOnLogin(fn func(models.User)) SessionOption {
	return func(s *Session) {
		s.onLogin = fn
	}
}

// WithOnLogout is called after logout and whenever the server rejects the token.
func WithOnLogout(fn func()) SessionOption {
	return func(s *Session) {
		s.onLogout = fn
	}
}

// WithSessionClock overrides the time source used for token expiry.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession binds a session to c. Any 401 seen by c afterwards ends the session.
func NewSession(c *Client, store TokenStore, opts ...SessionOption) *Session {
	s := &Session{
		client:  c,
		store:   store,
		now:     time.Now,
		loading: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	c.setUnauthorizedHandler(s.expire)
	return s
}

// Init restores a stored, unexpired token and loads its user. Any failure
// leaves the session signed out.
func (s *Session) Init(ctx context.Context) error {
	defer s.setLoading(false)

	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	exp, err := tokenExpiry(token)
	if err != nil || !exp.After(s.now()) {
		s.discard()
		return nil
	}

	s.client.SetToken(token)
	u, err := s.client.Auth.CurrentUser(ctx)
	if err != nil {
		slog.Debug("stored token rejected", slog.String("error", err.Error()))
		s.discard()
		return nil
	}
	s.setUser(u)
	return nil
}

// Login signs in and persists the token.
func (s *Session) Login(ctx context.Context, username, password string) error {
	res, err := s.client.Auth.Login(ctx, username, password)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if apiErr.Message != "" {
				return errors.New(apiErr.Message)
			}
			return errors.New("login failed")
		}
		return errors.New("login failed: cannot reach server")
	}
	if err := s.store.Save(res.AccessToken); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	s.client.SetToken(res.AccessToken)
	s.setUser(&res.User)

	if s.onLogin != nil {
		s.onLogin(res.User)
	}
	return nil
}

// Logout revokes the token when the server is reachable and always clears
// local state. The logout callback fires once even when the server rejects
// the token being revoked.
func (s *Session) Logout(ctx context.Context) {
	s.setLoggingOut(true)
	defer s.setLoggingOut(false)

	if s.client.Token() != "" {
		if err := s.client.Auth.Logout(ctx); err != nil {
			slog.Debug("server logout failed", slog.String("error", err.Error()))
		}
	}
	s.discard()
	if s.onLogout != nil {
		s.onLogout()
	}
}

// User returns the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether a user is signed in.
func (s *Session) IsAuthenticated() bool {
	return s.User() != nil
}

// IsAdmin reports whether the signed-in user holds the admin role.
func (s *Session) IsAdmin() bool {
	return s.User().IsAdmin()
}

// IsLoading is true until Init returns.
func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// expire runs when the server answers 401 to an authenticated request.
func (s *Session) expire() {
	s.discard()
	s.mu.RLock()
	inLogout := s.loggingOut
	s.mu.RUnlock()
	if inLogout {
		return
	}
	if s.onLogout != nil {
		s.onLogout()
	}
}

func (s *Session) discard() {
	if err := s.store.Clear(); err != nil {
		slog.Warn("failed to clear token", slog.String("error", err.Error()))
	}
	s.client.SetToken("")
	s.setUser(nil)
}

func (s *Session) setUser(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *Session) setLoggingOut(v bool) {
	s.mu.Lock()
	s.loggingOut = v
	s.mu.Unlock()
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// tokenExpiry reads the exp claim without checking the signature. The server
// remains the authority on validity.
func tokenExpiry(token string) (time.Time, error) {
	tok, err := jwt.ParseString(token, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	if tok.Expiration().IsZero() {
		return time.Time{}, errors.New("token has no expiry")
	}
	return tok.Expiration(), nil
}
