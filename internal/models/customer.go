package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Customer is a client contact attached to a case.
type Customer struct {
	ID        int64     `json:"id"`
	CaseID    int64     `json:"case_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerInput is the body of a create request.
type CustomerInput struct {
	CaseID  int64  `json:"case_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Status  Status `json:"status"`
}

// Validate implements validation.Validatable.
func (in CustomerInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("customer name and case_id are required"), validation.RuneLength(1, 100)),
		validation.Field(&in.CaseID, validation.Required.Error("customer name and case_id are required")),
		validation.Field(&in.Email, is.EmailFormat),
		validation.Field(&in.Status),
	)
}

// CustomerPatch is the body of an update request.
type CustomerPatch struct {
	CaseID  Field[int64]  `json:"case_id,omitzero"`
	Name    Field[string] `json:"name,omitzero"`
	Email   Field[string] `json:"email,omitzero"`
	Phone   Field[string] `json:"phone,omitzero"`
	Address Field[string] `json:"address,omitzero"`
	Status  Field[Status] `json:"status,omitzero"`
}

// Validate implements validation.Validatable.
func (p CustomerPatch) Validate() error {
	var email error
	if p.Email.Set {
		email = validation.Validate(p.Email.Value, is.EmailFormat)
	}
	return validation.Errors{
		"case_id": validateSetID(p.CaseID, "case_id must be a positive integer"),
		"name":    validateSetString(p.Name, "customer name is required", 100),
		"email":   email,
		"status":  validateSetStatus(p.Status),
	}.Filter()
}

// Apply copies the present fields onto c.
func (p CustomerPatch) Apply(c *Customer) {
	if p.CaseID.Set {
		c.CaseID = p.CaseID.Value
	}
	if p.Name.Set {
		c.Name = p.Name.Value
	}
	if p.Email.Set {
		c.Email = p.Email.Value
	}
	if p.Phone.Set {
		c.Phone = p.Phone.Value
	}
	if p.Address.Set {
		c.Address = p.Address.Value
	}
	if p.Status.Set {
		c.Status = p.Status.Value
	}
}
