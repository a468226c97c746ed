// Package apperr holds the sentinel errors shared by the service and API layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
)

// Error pairs a sentinel kind with a message that is safe to show to clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// New returns an error of the given kind carrying a client-facing message.
func New(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Invalid wraps a validation failure as ErrInvalidInput, keeping its message.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrInvalidInput, Message: err.Error()}
}

// Message returns the client-facing message of err, or fallback when err
// does not carry one.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return fallback
}
