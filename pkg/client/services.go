package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/starford/casedesk/internal/models"
)

// resource implements the CRUD calls shared by every record type.
type resource[T, In, Patch any] struct {
	c    *Client
	path string
	one  string
	many string
}

// List returns one page of records.
func (r resource[T, In, Patch]) List(ctx context.Context, page, perPage int) (*models.Page[T], error) {
	return r.listAt(ctx, r.path, page, perPage)
}

func (r resource[T, In, Patch]) listAt(ctx context.Context, path string, page, perPage int) (*models.Page[T], error) {
	env, err := r.c.do(ctx, http.MethodGet, path, pageQuery(page, perPage), nil)
	if err != nil {
		return nil, err
	}
	out := &models.Page[T]{}
	if err := env.decode(r.many, &out.Items); err != nil {
		return nil, err
	}
	if err := env.decode("pagination", &out.Pagination); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one record.
func (r resource[T, In, Patch]) Get(ctx context.Context, id int64) (*T, error) {
	return r.single(ctx, http.MethodGet, fmt.Sprintf("%s/%d", r.path, id), nil)
}

// Create stores a new record and returns it as the server saved it.
func (r resource[T, In, Patch]) Create(ctx context.Context, in In) (*T, error) {
	return r.single(ctx, http.MethodPost, r.path, in)
}

// Update changes only the fields set in patch.
func (r resource[T, In, Patch]) Update(ctx context.Context, id int64, patch Patch) (*T, error) {
	return r.single(ctx, http.MethodPut, fmt.Sprintf("%s/%d", r.path, id), patch)
}

// Delete removes a record.
func (r resource[T, In, Patch]) Delete(ctx context.Context, id int64) error {
	_, err := r.c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", r.path, id), nil, nil)
	return err
}

func (r resource[T, In, Patch]) single(ctx context.Context, method, path string, body any) (*T, error) {
	env, err := r.c.do(ctx, method, path, nil, body)
	if err != nil {
		return nil, err
	}
	var out T
	if err := env.decode(r.one, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CaseService calls the /cases endpoints.
type CaseService struct {
	resource[models.Case, models.CaseInput, models.CasePatch]
}

// CustomerService calls the /customers endpoints.
type CustomerService struct {
	resource[models.Customer, models.CustomerInput, models.CustomerPatch]
}

// ListByCase returns the customers of one case.
func (s *CustomerService) ListByCase(ctx context.Context, caseID int64, page, perPage int) (*models.Page[models.Customer], error) {
	return s.listAt(ctx, fmt.Sprintf("%s/case/%d", s.path, caseID), page, perPage)
}

// InvestigationService calls the /investigations endpoints.
type InvestigationService struct {
	resource[models.Investigation, models.InvestigationInput, models.InvestigationPatch]
}

// ListByCase returns the investigations of one case.
func (s *InvestigationService) ListByCase(ctx context.Context, caseID int64, page, perPage int) (*models.Page[models.Investigation], error) {
	return s.listAt(ctx, fmt.Sprintf("%s/case/%d", s.path, caseID), page, perPage)
}

// TargetService calls the /targets endpoints.
type TargetService struct {
	resource[models.Target, models.TargetInput, models.TargetPatch]
}

// ListByInvestigation returns the targets of one investigation.
func (s *TargetService) ListByInvestigation(ctx context.Context, investigationID int64, page, perPage int) (*models.Page[models.Target], error) {
	return s.listAt(ctx, fmt.Sprintf("%s/investigation/%d", s.path, investigationID), page, perPage)
}

// SearchService calls POST /search.
type SearchService struct {
	c *Client
}

// Advanced runs one aggregate search across the selected entity types.
func (s *SearchService) Advanced(ctx context.Context, params models.SearchParams, page, perPage int) (*models.SearchResults, error) {
	env, err := s.c.do(ctx, http.MethodPost, "/search", pageQuery(page, perPage), params)
	if err != nil {
		return nil, err
	}
	out := models.NewSearchResults()
	if err := env.decode("results", out); err != nil {
		return nil, err
	}
	return out, nil
}

// DashboardService calls GET /dashboard.
type DashboardService struct {
	c *Client
}

// Summary returns record totals and the case status distribution.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	env, err := s.c.do(ctx, http.MethodGet, "/dashboard", nil, nil)
	if err != nil {
		return nil, err
	}
	var out models.DashboardSummary
	if err := env.decode("summary", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthService calls the /auth endpoints.
type AuthService struct {
	c *Client
}

// LoginResult is a successful login.
type LoginResult struct {
	AccessToken string
	User        models.User
}

// Login exchanges credentials for an access token. It does not attach the token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	env, err := s.c.do(ctx, http.MethodPost, "/auth/login", nil, models.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	out := &LoginResult{}
	if err := env.decode("access_token", &out.AccessToken); err != nil {
		return nil, err
	}
	if err := env.decode("user", &out.User); err != nil {
		return nil, err
	}
	return out, nil
}

// CurrentUser returns the account owning the attached token.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	return s.user(ctx, http.MethodGet, "/auth/user", nil)
}

// Register creates an account. Admin only.
func (s *AuthService) Register(ctx context.Context, in models.UserInput) (*models.User, error) {
	return s.user(ctx, http.MethodPost, "/auth/register", in)
}

// Logout revokes the attached token on the server.
func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	return err
}

func (s *AuthService) user(ctx context.Context, method, path string, body any) (*models.User, error) {
	env, err := s.c.do(ctx, method, path, nil, body)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := env.decode("user", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// attachmentsPath is the attachments collection of a case.
func attachmentsPath(caseID int64) string {
	return fmt.Sprintf("/cases/%d/attachments", caseID)
}

// Attachments lists the evidence files of a case.
func (s *CaseService) Attachments(ctx context.Context, caseID int64) ([]models.Attachment, error) {
	env, err := s.c.do(ctx, http.MethodGet, attachmentsPath(caseID), nil, nil)
	if err != nil {
		return nil, err
	}
	var out []models.Attachment
	if err := env.decode("attachments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AttachmentURL is the download location of one attachment.
func (s *CaseService) AttachmentURL(caseID int64, name string) string {
	return s.c.baseURL + attachmentsPath(caseID) + "/" + url.PathEscape(name)
}

// UploadAttachment stores r as a case attachment named name.
func (s *CaseService) UploadAttachment(ctx context.Context, caseID int64, name string, r io.Reader) (*models.Attachment, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("client: build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("client: read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("client: build upload: %w", err)
	}

	env, err := s.c.send(ctx, http.MethodPost, attachmentsPath(caseID), nil, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var out models.Attachment
	if err := env.decode("attachment", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
