package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Target is a leaf record under an investigation.
type Target struct {
	ID              int64     `json:"id"`
	InvestigationID int64     `json:"investigation_id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Details         string    `json:"details"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TargetInput is the body of a create request.
type TargetInput struct {
	InvestigationID int64  `json:"investigation_id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Details         string `json:"details"`
	Status          Status `json:"status"`
}

// Validate implements validation.Validatable.
func (in TargetInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("target name and investigation_id are required"), validation.RuneLength(1, 100)),
		validation.Field(&in.InvestigationID, validation.Required.Error("target name and investigation_id are required")),
		validation.Field(&in.Type, validation.RuneLength(0, 50)),
		validation.Field(&in.Status),
	)
}

// TargetPatch is the body of an update request.
type TargetPatch struct {
	InvestigationID Field[int64]  `json:"investigation_id,omitzero"`
	Name            Field[string] `json:"name,omitzero"`
	Type            Field[string] `json:"type,omitzero"`
	Details         Field[string] `json:"details,omitzero"`
	Status          Field[Status] `json:"status,omitzero"`
}

// Validate implements validation.Validatable.
func (p TargetPatch) Validate() error {
	return validation.Errors{
		"investigation_id": validateSetID(p.InvestigationID, "investigation_id must be a positive integer"),
		"name":             validateSetString(p.Name, "target name is required", 100),
		"type":             validation.Validate(p.Type.Value, validation.RuneLength(0, 50)),
		"status":           validateSetStatus(p.Status),
	}.Filter()
}

// Apply copies the present fields onto t.
func (p TargetPatch) Apply(t *Target) {
	if p.InvestigationID.Set {
		t.InvestigationID = p.InvestigationID.Value
	}
	if p.Name.Set {
		t.Name = p.Name.Value
	}
	if p.Type.Set {
		t.Type = p.Type.Value
	}
	if p.Details.Set {
		t.Details = p.Details.Value
	}
	if p.Status.Set {
		t.Status = p.Status.Value
	}
}
