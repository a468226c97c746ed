package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/crypto/bcrypt"

	"github.com/starford/casedesk/internal/api"
	"github.com/starford/casedesk/internal/auth"
	"github.com/starford/casedesk/internal/caseservice"
	"github.com/starford/casedesk/internal/models"
	"github.com/starford/casedesk/internal/testutil"
)

func init() {
	auth.PasswordCost = bcrypt.MinCost
}

type harness struct {
	server    string
	tokenFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.TestDB(t)
	svc := caseservice.NewService(db, auth.NewIssuer("test-secret", time.Hour))
	if _, err := svc.Register(context.Background(), models.UserInput{
		Username: "admin", Email: "admin@example.com", Password: "admin123", Role: models.RoleAdmin,
	}); err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	r.Mount("/api", api.NewRouter(svc, nil))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &harness{
		server:    srv.URL + "/api",
		tokenFile: filepath.Join(t.TempDir(), "token"),
	}
}

// run executes casectl with args and returns what it printed.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCommand()
	cmd.Writer = &out
	cmd.ErrWriter = io.Discard
	full := append([]string{"casectl", "--server", h.server, "--token-file", h.tokenFile}, args...)
	err := cmd.Run(context.Background(), full)
	return out.String(), err
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := h.run(t, args...)
	if err != nil {
		t.Fatalf("casectl %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestRequiresLogin(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run(t, "cases", "list"); !errors.Is(err, errNotLoggedIn) {
		t.Errorf("cases list without login = %v, want errNotLoggedIn", err)
	}
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	if _, err := h.run(t, "login", "-u", "admin", "-p", "wrong"); err == nil || err.Error() != "invalid username or password" {
		t.Errorf("bad login error = %v", err)
	}

	out := h.mustRun(t, "login", "-u", "admin", "-p", "admin123")
	if !strings.Contains(out, "logged in as admin (admin)") {
		t.Errorf("login output = %q", out)
	}
	out = h.mustRun(t, "whoami")
	if !strings.Contains(out, "admin@example.com") {
		t.Errorf("whoami output = %q", out)
	}

	h.mustRun(t, "logout")
	if _, err := h.run(t, "whoami"); !errors.Is(err, errNotLoggedIn) {
		t.Errorf("whoami after logout = %v, want errNotLoggedIn", err)
	}
}

func TestRecordCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "login", "-u", "admin", "-p", "admin123")

	out := h.mustRun(t, "cases", "create", "--name", "Fraud ring", "--description", "wire transfers")
	if !strings.Contains(out, "Fraud ring") || !strings.Contains(out, "open") {
		t.Errorf("create output = %q", out)
	}

	h.mustRun(t, "customers", "create", "--case", "1", "--name", "Jane Doe", "--email", "jane@example.com")
	h.mustRun(t, "investigations", "create", "--case", "1", "--title", "Bank records", "--start-date", "2024-01-15")
	h.mustRun(t, "targets", "create", "--investigation", "1", "--name", "Shell Co", "--type", "organization")

	out = h.mustRun(t, "cases", "get", "1")
	for _, want := range []string{"Jane Doe", "Bank records", "2024-01-15"} {
		if !strings.Contains(out, want) {
			t.Errorf("case detail missing %q:\n%s", want, out)
		}
	}
	out = h.mustRun(t, "investigations", "get", "1")
	if !strings.Contains(out, "Shell Co") {
		t.Errorf("investigation detail missing target:\n%s", out)
	}

	out = h.mustRun(t, "cases", "update", "1", "--status", "on_hold")
	if !strings.Contains(out, "on_hold") || !strings.Contains(out, "Fraud ring") {
		t.Errorf("update output = %q", out)
	}

	out = h.mustRun(t, "targets", "list", "--investigation", "1")
	if !strings.Contains(out, "Shell Co") || !strings.Contains(out, "page 1 of 1 (1 total)") {
		t.Errorf("targets list = %q", out)
	}

	if _, err := h.run(t, "customers", "list", "--case", "42"); err == nil {
		t.Error("listing customers of a missing case succeeded")
	}

	h.mustRun(t, "cases", "delete", "1")
	out = h.mustRun(t, "--json", "dashboard")
	if !strings.Contains(out, `"total_cases": 0`) || !strings.Contains(out, `"total_targets": 0`) {
		t.Errorf("dashboard after delete = %q", out)
	}
}

func TestSearchCommand(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "login", "-u", "admin", "-p", "admin123")
	h.mustRun(t, "cases", "create", "--name", "Smuggling")
	h.mustRun(t, "customers", "create", "--case", "1", "--name", "Acme Shipping")

	if _, err := h.run(t, "search", "--cases=false", "--customers=false", "--investigations=false", "--targets=false"); !errors.Is(err, errNoEntities) {
		t.Errorf("search with no entities = %v, want errNoEntities", err)
	}

	out := h.mustRun(t, "search", "--name", "acme")
	if !strings.HasPrefix(strings.TrimSpace(out), "Customers (1)") {
		t.Errorf("customers section should come first:\n%s", out)
	}
	if !strings.Contains(out, "Cases (0)") {
		t.Errorf("cases section missing:\n%s", out)
	}
}

func TestSectionOrder(t *testing.T) {
	res := models.NewSearchResults()
	res.Investigations = []models.Investigation{{ID: 1}}
	res.Targets = []models.Target{{ID: 2}}

	tests := []struct {
		name     string
		selected []string
		res      *models.SearchResults
		want     []string
	}{
		{"first with results moves up", models.AllEntities, res, []string{"investigations", "cases", "customers", "targets"}},
		{"already first", []string{"targets", "cases"}, res, []string{"targets", "cases"}},
		{"no results keeps order", models.AllEntities, models.NewSearchResults(), models.AllEntities},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sectionOrder(tt.selected, tt.res)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("sectionOrder mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
