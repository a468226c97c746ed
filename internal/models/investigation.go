package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Investigation is a sub-record of a case that owns targets.
type Investigation struct {
	ID          int64     `json:"id"`
	CaseID      int64     `json:"case_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	StartDate   *Date     `json:"start_date"`
	EndDate     *Date     `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	TargetCount int       `json:"target_count"`
}

// InvestigationInput is the body of a create request. Dates are YYYY-MM-DD.
type InvestigationInput struct {
	CaseID      int64  `json:"case_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// Validate implements validation.Validatable.
func (in InvestigationInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error("investigation title and case_id are required"), validation.RuneLength(1, 100)),
		validation.Field(&in.CaseID, validation.Required.Error("investigation title and case_id are required")),
		validation.Field(&in.Status),
		validation.Field(&in.StartDate, validation.Date(DateLayout).Error("start date must be YYYY-MM-DD")),
		validation.Field(&in.EndDate, validation.Date(DateLayout).Error("end date must be YYYY-MM-DD")),
	)
}

// InvestigationPatch is the body of an update request. A null or empty date clears it.
type InvestigationPatch struct {
	CaseID      Field[int64]  `json:"case_id,omitzero"`
	Title       Field[string] `json:"title,omitzero"`
	Description Field[string] `json:"description,omitzero"`
	Status      Field[Status] `json:"status,omitzero"`
	StartDate   Field[string] `json:"start_date,omitzero"`
	EndDate     Field[string] `json:"end_date,omitzero"`
}

// Validate implements validation.Validatable.
func (p InvestigationPatch) Validate() error {
	return validation.Errors{
		"case_id":    validateSetID(p.CaseID, "case_id must be a positive integer"),
		"title":      validateSetString(p.Title, "investigation title is required", 100),
		"status":     validateSetStatus(p.Status),
		"start_date": validation.Validate(p.StartDate.Value, validation.Date(DateLayout).Error("start date must be YYYY-MM-DD")),
		"end_date":   validation.Validate(p.EndDate.Value, validation.Date(DateLayout).Error("end date must be YYYY-MM-DD")),
	}.Filter()
}

// Apply copies the present fields onto inv. Validate must have passed.
func (p InvestigationPatch) Apply(inv *Investigation) {
	if p.CaseID.Set {
		inv.CaseID = p.CaseID.Value
	}
	if p.Title.Set {
		inv.Title = p.Title.Value
	}
	if p.Description.Set {
		inv.Description = p.Description.Value
	}
	if p.Status.Set {
		inv.Status = p.Status.Value
	}
	if p.StartDate.Set {
		inv.StartDate, _ = ParseDate(p.StartDate.Value)
	}
	if p.EndDate.Set {
		inv.EndDate, _ = ParseDate(p.EndDate.Value)
	}
}
