package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewKeepsKindAndMessage(t *testing.T) {
	err := fmt.Errorf("service: %w", New(ErrNotFound, "case not found"))
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected ErrNotFound kind")
	}
	if got := Message(err, "fallback"); got != "case not found" {
		t.Errorf("Message = %q", got)
	}
}

func TestInvalid(t *testing.T) {
	if Invalid(nil) != nil {
		t.Error("Invalid(nil) should be nil")
	}
	err := Invalid(errors.New("name: cannot be blank."))
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("expected ErrInvalidInput kind")
	}
	if got := Message(err, ""); got != "name: cannot be blank." {
		t.Errorf("Message = %q", got)
	}
}

func TestMessageFallback(t *testing.T) {
	if got := Message(ErrConflict, "internal error"); got != "internal error" {
		t.Errorf("Message = %q", got)
	}
}
