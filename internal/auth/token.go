package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/starford/casedesk/internal/apperr"
)

const issuer = "casedesk"

// Claims is the verified content of an access token.
type Claims struct {
	UserID    int64
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// Issuer signs and verifies HS256 access tokens.
type Issuer struct {
	key     []byte
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithRevoker sets the store consulted for revoked token ids.
func WithRevoker(r Revoker) IssuerOption {
	return func(i *Issuer) {
		i.revoker = r
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.now = now
	}
}

// NewIssuer creates an Issuer signing with secret. Tokens live for ttl.
func NewIssuer(secret string, ttl time.Duration, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		key:     []byte(secret),
		ttl:     ttl,
		revoker: NewMemoryRevoker(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue returns a signed token for the user.
func (i *Issuer) Issue(userID int64, role string) (string, error) {
	now := i.now()
	tok, err := jwt.NewBuilder().
		Issuer(issuer).
		Subject(strconv.FormatInt(userID, 10)).
		JwtID(uuid.NewString()).
		IssuedAt(now).
		Expiration(now.Add(i.ttl)).
		Claim("role", role).
		Build()
	if err != nil {
		return "", fmt.Errorf("auth: build token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, i.key))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return string(signed), nil
}

// Verify parses raw, checks signature, expiry and revocation, and returns its claims.
// Every failure wraps apperr.ErrUnauthorized.
func (i *Issuer) Verify(ctx context.Context, raw string) (*Claims, error) {
	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, i.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(issuer),
		jwt.WithClock(jwt.ClockFunc(i.now)),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: %v: %w", err, apperr.ErrUnauthorized)
	}
	userID, err := strconv.ParseInt(tok.Subject(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("auth: bad subject %q: %w", tok.Subject(), apperr.ErrUnauthorized)
	}
	revoked, err := i.revoker.IsRevoked(ctx, tok.JwtID())
	if err != nil {
		return nil, fmt.Errorf("auth: revocation lookup: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("auth: token revoked: %w", apperr.ErrUnauthorized)
	}
	role, _ := tok.PrivateClaims()["role"].(string)
	return &Claims{
		UserID:    userID,
		Role:      role,
		TokenID:   tok.JwtID(),
		ExpiresAt: tok.Expiration(),
	}, nil
}

// Revoke blocks the token id until the token would have expired anyway.
func (i *Issuer) Revoke(ctx context.Context, c *Claims) error {
	ttl := c.ExpiresAt.Sub(i.now())
	if ttl <= 0 {
		return nil
	}
	return i.revoker.Revoke(ctx, c.TokenID, ttl)
}
