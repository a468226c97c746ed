package api

import "github.com/starford/casedesk/internal/models"

// The types below document response bodies. Handlers build the same shapes
// with envelope.

// CaseListResponse is the body of GET /cases.
type CaseListResponse struct {
	Message    string            `json:"message" example:"cases retrieved"`
	Status     string            `json:"status" example:"success"`
	Cases      []models.Case     `json:"cases" validate:"required"`
	Pagination models.Pagination `json:"pagination" validate:"required"`
}

// CaseResponse wraps a single case.
type CaseResponse struct {
	Message string      `json:"message"`
	Status  string      `json:"status" example:"success"`
	Case    models.Case `json:"case" validate:"required"`
}

// CustomerResponse wraps a single customer.
type CustomerResponse struct {
	Message  string          `json:"message"`
	Status   string          `json:"status" example:"success"`
	Customer models.Customer `json:"customer" validate:"required"`
}

// InvestigationResponse wraps a single investigation.
type InvestigationResponse struct {
	Message       string               `json:"message"`
	Status        string               `json:"status" example:"success"`
	Investigation models.Investigation `json:"investigation" validate:"required"`
}

// TargetResponse wraps a single target.
type TargetResponse struct {
	Message string        `json:"message"`
	Status  string        `json:"status" example:"success"`
	Target  models.Target `json:"target" validate:"required"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Message     string      `json:"message" example:"login successful"`
	Status      string      `json:"status" example:"success"`
	AccessToken string      `json:"access_token" validate:"required"`
	User        models.User `json:"user" validate:"required"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	Message string      `json:"message"`
	Status  string      `json:"status" example:"success"`
	User    models.User `json:"user" validate:"required"`
}

// SearchResponse wraps advanced search results.
type SearchResponse struct {
	Message string               `json:"message" example:"search results retrieved"`
	Status  string               `json:"status" example:"success"`
	Results models.SearchResults `json:"results" validate:"required"`
}

// DashboardResponse wraps the dashboard summary.
type DashboardResponse struct {
	Message string                  `json:"message"`
	Status  string                  `json:"status" example:"success"`
	Summary models.DashboardSummary `json:"summary" validate:"required"`
}
