package caseservice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/crypto/bcrypt"

	"github.com/starford/casedesk/internal/apperr"
	"github.com/starford/casedesk/internal/auth"
	"github.com/starford/casedesk/internal/checksum"
	"github.com/starford/casedesk/internal/models"
	"github.com/starford/casedesk/internal/testutil"
)

func init() {
	auth.PasswordCost = bcrypt.MinCost
}

type recordedEvent struct {
	Kind, Entity string
	ID           int64
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) PublishRecordEvent(kind, entity string, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{kind, entity, id})
}

func newTestService(t *testing.T) (*Service, *recorder) {
	t.Helper()
	db := testutil.TestDB(t)
	_, files := testutil.TestAttachments(t)
	rec := &recorder{}
	svc := NewService(db, auth.NewIssuer("test-secret", time.Hour), WithEvents(rec), WithAttachments(files))
	return svc, rec
}

func mustCase(t *testing.T, svc *Service, name string) *models.Case {
	t.Helper()
	c, err := svc.CreateCase(context.Background(), models.CaseInput{Name: name})
	if err != nil {
		t.Fatalf("create case %q: %v", name, err)
	}
	return c
}

func TestCreateCase_DefaultsAndValidation(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()

	c := mustCase(t, svc, "Fraud")
	if c.Status != models.StatusOpen {
		t.Errorf("status = %q, want open", c.Status)
	}
	if diff := cmp.Diff([]recordedEvent{{"created", EntityCase, c.ID}}, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	_, err := svc.CreateCase(ctx, models.CaseInput{})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if got := apperr.Message(err, ""); !strings.Contains(got, "case name is required") {
		t.Errorf("message = %q", got)
	}

	_, err = svc.CreateCase(ctx, models.CaseInput{Name: "x", Status: "bogus"})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("invalid status: expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateCase_PartialAndETag(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.CreateCase(ctx, models.CaseInput{Name: "Fraud", Description: "keep me"})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateCase(ctx, created.ID, models.CasePatch{Status: models.NewField(models.StatusClosed)}, "")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Fraud" || updated.Description != "keep me" || updated.Status != models.StatusClosed {
		t.Errorf("unexpected update result: %+v", updated)
	}

	_, err = svc.UpdateCase(ctx, created.ID, models.CasePatch{Name: models.NewField("x")}, "stale")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	current, _ := svc.GetCase(ctx, created.ID)
	tag, _ := checksum.ETag(current)
	if _, err := svc.UpdateCase(ctx, created.ID, models.CasePatch{Name: models.NewField("Renamed")}, tag); err != nil {
		t.Fatalf("matching If-Match rejected: %v", err)
	}

	_, err = svc.UpdateCase(ctx, 999, models.CasePatch{}, "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateChildren_RequireParent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, models.CustomerInput{CaseID: 42, Name: "Alice"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("customer: expected ErrNotFound, got %v", err)
	}
	if got := apperr.Message(err, ""); got != "specified case 42 not found" {
		t.Errorf("message = %q", got)
	}

	_, err = svc.CreateInvestigation(ctx, models.InvestigationInput{CaseID: 42, Title: "Trace"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("investigation: expected ErrNotFound, got %v", err)
	}
	_, err = svc.CreateTarget(ctx, models.TargetInput{InvestigationID: 42, Name: "Server"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("target: expected ErrNotFound, got %v", err)
	}

	c := mustCase(t, svc, "Fraud")
	cust, err := svc.CreateCustomer(ctx, models.CustomerInput{CaseID: c.ID, Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.UpdateCustomer(ctx, cust.ID, models.CustomerPatch{CaseID: models.NewField[int64](777)}, "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("re-parent to missing case: expected ErrNotFound, got %v", err)
	}
	_, err = svc.CreateCustomer(ctx, models.CustomerInput{CaseID: c.ID, Name: "Bob", Email: "not-an-email"})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad email: expected ErrInvalidInput, got %v", err)
	}
}

func TestInvestigationDates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := mustCase(t, svc, "Fraud")

	_, err := svc.CreateInvestigation(ctx, models.InvestigationInput{CaseID: c.ID, Title: "Trace", StartDate: "2024/01/01"})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("bad date: expected ErrInvalidInput, got %v", err)
	}

	inv, err := svc.CreateInvestigation(ctx, models.InvestigationInput{CaseID: c.ID, Title: "Trace", StartDate: "2024-01-15"})
	if err != nil {
		t.Fatal(err)
	}
	if inv.StartDate == nil || inv.StartDate.String() != "2024-01-15" || inv.EndDate != nil {
		t.Errorf("dates = %v / %v", inv.StartDate, inv.EndDate)
	}

	cleared, err := svc.UpdateInvestigation(ctx, inv.ID, models.InvestigationPatch{StartDate: models.Field[string]{Set: true, Null: true}}, "")
	if err != nil {
		t.Fatal(err)
	}
	if cleared.StartDate != nil {
		t.Errorf("start date not cleared: %v", cleared.StartDate)
	}
}

func TestListByParent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustCase(t, svc, "A")
	b := mustCase(t, svc, "B")
	for _, in := range []models.CustomerInput{
		{CaseID: a.ID, Name: "one"},
		{CaseID: a.ID, Name: "two"},
		{CaseID: b.ID, Name: "three"},
	} {
		if _, err := svc.CreateCustomer(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	page, err := svc.ListCustomersByCase(ctx, a.ID, models.NewPageRequest(1, 10))
	if err != nil {
		t.Fatal(err)
	}
	if page.Pagination.Total != 2 || len(page.Items) != 2 {
		t.Errorf("total=%d items=%d, want 2/2", page.Pagination.Total, len(page.Items))
	}

	_, err = svc.ListCustomersByCase(ctx, 999, models.NewPageRequest(1, 10))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing case, got %v", err)
	}
	_, err = svc.ListTargetsByInvestigation(ctx, 999, models.NewPageRequest(1, 10))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing investigation, got %v", err)
	}
}

func TestDeleteCase_CascadesAndRemovesAttachments(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()
	c := mustCase(t, svc, "Fraud")
	inv, err := svc.CreateInvestigation(ctx, models.InvestigationInput{CaseID: c.ID, Title: "Trace"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateTarget(ctx, models.TargetInput{InvestigationID: inv.ID, Name: "Server"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UploadAttachment(ctx, c.ID, "report.txt", strings.NewReader("evidence")); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteCase(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetInvestigation(ctx, inv.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("investigation survived case delete: %v", err)
	}
	if err := svc.DeleteCase(ctx, c.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
	last := rec.events[len(rec.events)-1]
	if last != (recordedEvent{"deleted", EntityCase, c.ID}) {
		t.Errorf("last event = %+v", last)
	}

	recreated := mustCase(t, svc, "Again")
	list, err := svc.ListAttachments(ctx, recreated.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("expected no attachments, got %v", list)
	}
}

func TestAttachments(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := mustCase(t, svc, "Fraud")

	att, err := svc.UploadAttachment(ctx, c.ID, "report.txt", strings.NewReader("evidence"))
	if err != nil {
		t.Fatal(err)
	}
	if att.Size != 8 || att.Checksum != checksum.Sum([]byte("evidence")) {
		t.Errorf("unexpected attachment: %+v", att)
	}

	data, err := svc.ReadAttachment(ctx, c.ID, "report.txt")
	if err != nil || string(data) != "evidence" {
		t.Fatalf("read = %q, %v", data, err)
	}

	for _, name := range []string{"../escape.txt", "a/b.txt", ".hidden", ""} {
		if _, err := svc.UploadAttachment(ctx, c.ID, name, strings.NewReader("x")); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("name %q: expected ErrInvalidInput, got %v", name, err)
		}
	}
	if _, err := svc.ReadAttachment(ctx, c.ID, "missing.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.ListAttachments(ctx, 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing case, got %v", err)
	}
}

func TestLoginRegisterLogout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	admin, err := svc.Register(ctx, models.UserInput{Username: "admin", Email: "admin@example.com", Password: "admin123", Role: "admin"})
	if err != nil {
		t.Fatal(err)
	}
	if admin.Role != models.RoleAdmin {
		t.Errorf("role = %q", admin.Role)
	}
	user, err := svc.Register(ctx, models.UserInput{Username: "user", Email: "user@example.com", Password: "user123", Role: "superuser"})
	if err != nil {
		t.Fatal(err)
	}
	if user.Role != models.RoleGeneral {
		t.Errorf("unknown role should become general, got %q", user.Role)
	}

	_, err = svc.Register(ctx, models.UserInput{Username: "admin", Email: "other@example.com", Password: "x"})
	if !errors.Is(err, apperr.ErrInvalidInput) || apperr.Message(err, "") != "username already exists" {
		t.Errorf("duplicate username: %v", err)
	}
	_, err = svc.Register(ctx, models.UserInput{Username: "other", Email: "admin@example.com", Password: "x"})
	if !errors.Is(err, apperr.ErrInvalidInput) || apperr.Message(err, "") != "email already exists" {
		t.Errorf("duplicate email: %v", err)
	}

	_, err = svc.Login(ctx, models.Credentials{Username: "admin", Password: "wrong"})
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("wrong password: expected ErrUnauthorized, got %v", err)
	}
	_, err = svc.Login(ctx, models.Credentials{Username: "nobody", Password: "x"})
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("unknown user: expected ErrUnauthorized, got %v", err)
	}
	_, err = svc.Login(ctx, models.Credentials{Username: "admin"})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("missing password: expected ErrInvalidInput, got %v", err)
	}

	res, err := svc.Login(ctx, models.Credentials{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatal(err)
	}
	claims, err := svc.Authenticate(ctx, res.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != admin.ID {
		t.Errorf("claims user = %d, want %d", claims.UserID, admin.ID)
	}
	if err := svc.RequireAdmin(ctx, admin.ID); err != nil {
		t.Errorf("admin rejected: %v", err)
	}
	if err := svc.RequireAdmin(ctx, user.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("general user: expected ErrForbidden, got %v", err)
	}

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(ctx, res.AccessToken); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("revoked token accepted: %v", err)
	}
}

func seedSearchData(t *testing.T, svc *Service) (fraud, theft *models.Case) {
	t.Helper()
	ctx := context.Background()
	fraud = mustCase(t, svc, "Bank fraud")
	theft, err := svc.CreateCase(ctx, models.CaseInput{Name: "Car theft", Status: models.StatusClosed})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateCustomer(ctx, models.CustomerInput{CaseID: theft.ID, Name: "John Smith", Email: "john@example.com"}); err != nil {
		t.Fatal(err)
	}
	inv, err := svc.CreateInvestigation(ctx, models.InvestigationInput{CaseID: fraud.ID, Title: "Ledger review"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateInvestigation(ctx, models.InvestigationInput{CaseID: theft.ID, Title: "CCTV review"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateTarget(ctx, models.TargetInput{InvestigationID: inv.ID, Name: "Mail server", Type: "server"}); err != nil {
		t.Fatal(err)
	}
	return fraud, theft
}

func TestSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fraud, theft := seedSearchData(t, svc)
	page := models.NewPageRequest(1, 10)

	res, err := svc.Search(ctx, models.SearchParams{}, page)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cases) != 2 || len(res.Customers) != 1 || len(res.Investigations) != 2 || len(res.Targets) != 1 {
		t.Errorf("no filters: got %d/%d/%d/%d", len(res.Cases), len(res.Customers), len(res.Investigations), len(res.Targets))
	}

	res, err = svc.Search(ctx, models.SearchParams{
		Entities: []string{models.EntityCases},
		Status:   models.NewField("closed"),
	}, page)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cases) != 1 || res.Cases[0].ID != theft.ID {
		t.Errorf("status filter: %+v", res.Cases)
	}
	if res.Customers == nil || len(res.Customers) != 0 {
		t.Errorf("unselected entity should be an empty list, got %v", res.Customers)
	}

	res, err = svc.Search(ctx, models.SearchParams{Entities: []string{}}, page)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cases)+len(res.Customers)+len(res.Investigations)+len(res.Targets) != 0 {
		t.Errorf("empty selection should return nothing: %+v", res)
	}

	res, err = svc.Search(ctx, models.SearchParams{Title: models.NewField("REVIEW"), CaseID: models.NewField(models.NewSearchID(fraud.ID))}, page)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Investigations) != 1 || res.Investigations[0].Title != "Ledger review" {
		t.Errorf("investigation filters: %+v", res.Investigations)
	}

	if _, err := svc.Search(ctx, models.SearchParams{Entities: []string{"users"}}, page); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("unknown entity: expected ErrInvalidInput, got %v", err)
	}
}

func TestSearch_CrossEntity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fraud, theft := seedSearchData(t, svc)
	page := models.NewPageRequest(1, 10)

	res, err := svc.Search(ctx, models.SearchParams{
		Entities:     []string{models.EntityCases, models.EntityInvestigations},
		CrossEntity:  true,
		CustomerName: models.NewField("smith"),
		TargetName:   models.NewField("mail"),
	}, page)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cases) != 1 || res.Cases[0].ID != theft.ID {
		t.Errorf("cases via customer name: %+v", res.Cases)
	}
	if len(res.Investigations) != 1 || res.Investigations[0].CaseID != fraud.ID {
		t.Errorf("investigations via target name: %+v", res.Investigations)
	}

	res, err = svc.Search(ctx, models.SearchParams{
		Entities:     []string{models.EntityCases},
		CrossEntity:  true,
		CustomerName: models.NewField("nobody"),
	}, page)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cases) != 2 {
		t.Errorf("no customer match should leave case filters untouched, got %d cases", len(res.Cases))
	}

	res, err = svc.Search(ctx, models.SearchParams{
		Entities:     []string{models.EntityCases, models.EntityInvestigations},
		CrossEntity:  true,
		CustomerName: models.NewField(""),
		TargetName:   models.NewField(""),
	}, page)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cases) != 1 || res.Cases[0].ID != theft.ID {
		t.Errorf("empty customer name should select every case with a customer: %+v", res.Cases)
	}
	if len(res.Investigations) != 1 || res.Investigations[0].CaseID != fraud.ID {
		t.Errorf("empty target name should select every investigation with a target: %+v", res.Investigations)
	}
}

func TestDashboard(t *testing.T) {
	svc, _ := newTestService(t)
	seedSearchData(t, svc)

	sum, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := &models.DashboardSummary{
		TotalCases:          2,
		TotalCustomers:      1,
		TotalInvestigations: 2,
		TotalTargets:        1,
		CaseStatus:          map[models.Status]int{models.StatusOpen: 1, models.StatusClosed: 1},
	}
	if diff := cmp.Diff(want, sum); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}
