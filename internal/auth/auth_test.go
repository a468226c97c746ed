package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/casedesk/internal/apperr"
)

func init() {
	PasswordCost = bcrypt.MinCost
}

func TestHashAndCheckPassword(t *testing.T) {
	h, err := HashPassword("admin123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h == "admin123" {
		t.Fatal("hash must not equal the password")
	}
	if !CheckPassword(h, "admin123") {
		t.Error("correct password rejected")
	}
	if CheckPassword(h, "wrong") {
		t.Error("wrong password accepted")
	}
	if CheckPassword("not-a-hash", "admin123") {
		t.Error("garbage hash accepted")
	}
}

func TestIssueAndVerify(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	raw, err := iss.Issue(42, "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	c, err := iss.Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if c.UserID != 42 || c.Role != "admin" || c.TokenID == "" {
		t.Errorf("claims = %+v", c)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	raw, _ := NewIssuer("secret-a", time.Hour).Issue(1, "general")
	_, err := NewIssuer("secret-b", time.Hour).Verify(context.Background(), raw)
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	raw, _ := NewIssuer("secret", time.Hour, WithClock(func() time.Time { return past })).Issue(1, "general")
	_, err := NewIssuer("secret", time.Hour).Verify(context.Background(), raw)
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewIssuer("secret", time.Hour).Verify(context.Background(), "not.a.jwt")
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	iss := NewIssuer("secret", time.Hour)
	raw, _ := iss.Issue(7, "general")
	c, err := iss.Verify(ctx, raw)
	if err != nil {
		t.Fatal(err)
	}
	if err := iss.Revoke(ctx, c); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := iss.Verify(ctx, raw); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("revoked token verify = %v, want ErrUnauthorized", err)
	}

	other, _ := iss.Issue(7, "general")
	if _, err := iss.Verify(ctx, other); err != nil {
		t.Errorf("fresh token rejected after revoking another: %v", err)
	}
}

func TestMemoryRevokerExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	m := NewMemoryRevoker()
	m.now = func() time.Time { return now }

	_ = m.Revoke(ctx, "abc", time.Minute)
	if ok, _ := m.IsRevoked(ctx, "abc"); !ok {
		t.Fatal("expected abc revoked")
	}
	now = now.Add(2 * time.Minute)
	if ok, _ := m.IsRevoked(ctx, "abc"); ok {
		t.Error("revocation should lapse after ttl")
	}
}
