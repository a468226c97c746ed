package models

import (
	"bytes"
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Field is a JSON value that remembers whether its key was present in the
// request body. Partial updates and search filters only act on fields that
// were sent.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// NewField returns a Field holding v.
func NewField[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// UnmarshalJSON is only called when the key is present.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON encodes the value, or null when unset or null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// IsZero reports whether the field was absent, for omitzero encoding.
func (f Field[T]) IsZero() bool {
	return !f.Set
}

// Validate runs the value's own validation when the field was sent with a
// non-null value.
func (f Field[T]) Validate() error {
	if !f.Set || f.Null {
		return nil
	}
	if v, ok := any(f.Value).(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}

func validateSetString(f Field[string], requiredMsg string, maxLen int) error {
	if !f.Set {
		return nil
	}
	return validation.Validate(f.Value, validation.Required.Error(requiredMsg), validation.RuneLength(1, maxLen))
}

func validateSetStatus(f Field[Status]) error {
	if !f.Set {
		return nil
	}
	if f.Null || f.Value == "" {
		return validation.NewError("validation_status_required", "status cannot be empty")
	}
	return f.Value.Validate()
}

func validateSetID(f Field[int64], msg string) error {
	if !f.Set {
		return nil
	}
	if f.Null || f.Value <= 0 {
		return validation.NewError("validation_id_invalid", msg)
	}
	return nil
}
