package caseservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/casedesk/internal/apperr"
	"github.com/starford/casedesk/internal/auth"
	"github.com/starford/casedesk/internal/models"
)

const badCredentials = "invalid username or password"

// LoginResult is returned by a successful Login.
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// Login checks the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, creds models.Credentials) (*LoginResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, apperr.Invalid(err)
	}
	u, err := s.repo.GetUserByUsername(ctx, creds.Username)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.New(apperr.ErrUnauthorized, badCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, creds.Password) {
		return nil, apperr.New(apperr.ErrUnauthorized, badCredentials)
	}
	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, User: u}, nil
}

// Authenticate verifies a bearer token.
func (s *Service) Authenticate(ctx context.Context, raw string) (*auth.Claims, error) {
	claims, err := s.tokens.Verify(ctx, raw)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			return nil, apperr.New(apperr.ErrUnauthorized, "invalid or expired token")
		}
		return nil, err
	}
	return claims, nil
}

// CurrentUser loads the account a token belongs to.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return u, nil
}

// RequireAdmin fails with ErrForbidden unless the user exists and is an admin.
// The role is read from the store so demotions apply to live tokens.
func (s *Service) RequireAdmin(ctx context.Context, userID int64) error {
	u, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.New(apperr.ErrUnauthorized, "user not found")
	}
	if err != nil {
		return err
	}
	if !u.IsAdmin() {
		return apperr.New(apperr.ErrForbidden, "admin privileges required")
	}
	return nil
}

// Register creates a new account. Unknown roles become general.
func (s *Service) Register(ctx context.Context, in models.UserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := in.Validate(); err != nil {
		return nil, apperr.Invalid(err)
	}
	usernameTaken, emailTaken, err := s.repo.UserExists(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	switch {
	case usernameTaken:
		return nil, apperr.New(apperr.ErrInvalidInput, "username already exists")
	case emailTaken:
		return nil, apperr.New(apperr.ErrInvalidInput, "email already exists")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		Role:         in.NormalizedRole(),
		PasswordHash: hash,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return nil, apperr.New(apperr.ErrInvalidInput, "username or email already exists")
		}
		return nil, fmt.Errorf("register %q: %w", in.Username, err)
	}
	return u, nil
}

// Logout revokes the token described by claims.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	return s.tokens.Revoke(ctx, claims)
}

// HasUsers reports whether any account exists.
func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	n, err := s.repo.CountUsers(ctx)
	return n > 0, err
}
