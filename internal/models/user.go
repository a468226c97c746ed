package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// User is an account that can sign in. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Credentials is the body of a login request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate implements validation.Validatable.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required.Error("username and password are required")),
		validation.Field(&c.Password, validation.Required.Error("username and password are required")),
	)
}

// UserInput is the body of a register request.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate implements validation.Validatable.
func (in UserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required.Error("username, email and password are required"), validation.RuneLength(1, 80)),
		validation.Field(&in.Email, validation.Required.Error("username, email and password are required"), is.EmailFormat),
		validation.Field(&in.Password, validation.Required.Error("username, email and password are required")),
	)
}

// NormalizedRole returns the requested role, falling back to general for
// anything unknown.
func (in UserInput) NormalizedRole() string {
	if in.Role == RoleAdmin {
		return RoleAdmin
	}
	return RoleGeneral
}
