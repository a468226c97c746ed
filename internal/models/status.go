// Package models defines the domain types for casedesk.
package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Status is the lifecycle state shared by every record type.
type Status string

// Record statuses.
const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
	StatusOnHold     Status = "on_hold"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusClosed, StatusOnHold}

// Validate implements validation.Validatable.
func (s Status) Validate() error {
	return validation.Validate(string(s),
		validation.In(string(StatusOpen), string(StatusInProgress), string(StatusClosed), string(StatusOnHold)).
			Error("must be one of open, in_progress, closed, on_hold"),
	)
}

// OrDefault returns s, or StatusOpen when s is empty.
func (s Status) OrDefault() Status {
	if s == "" {
		return StatusOpen
	}
	return s
}

// Roles.
const (
	RoleAdmin   = "admin"
	RoleGeneral = "general"
)
