package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Case is the top-level investigative record. It owns customers and investigations.
type Case struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	CustomerCount      int       `json:"customer_count"`
	InvestigationCount int       `json:"investigation_count"`
}

// CaseInput is the body of a create request.
type CaseInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// Validate implements validation.Validatable.
func (in CaseInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("case name is required"), validation.RuneLength(1, 100)),
		validation.Field(&in.Status),
	)
}

// CasePatch is the body of an update request.
type CasePatch struct {
	Name        Field[string] `json:"name,omitzero"`
	Description Field[string] `json:"description,omitzero"`
	Status      Field[Status] `json:"status,omitzero"`
}

// Validate implements validation.Validatable.
func (p CasePatch) Validate() error {
	return validation.Errors{
		"name":   validateSetString(p.Name, "case name is required", 100),
		"status": validateSetStatus(p.Status),
	}.Filter()
}

// Apply copies the present fields onto c.
func (p CasePatch) Apply(c *Case) {
	if p.Name.Set {
		c.Name = p.Name.Value
	}
	if p.Description.Set {
		c.Description = p.Description.Value
	}
	if p.Status.Set {
		c.Status = p.Status.Value
	}
}
