package seed

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/casedesk/internal/auth"
	"github.com/starford/casedesk/internal/caseservice"
	"github.com/starford/casedesk/internal/models"
	"github.com/starford/casedesk/internal/testutil"
)

func init() {
	auth.PasswordCost = bcrypt.MinCost
}

func TestRun(t *testing.T) {
	svc := caseservice.NewService(testutil.TestDB(t), auth.NewIssuer("test-secret", time.Hour))
	ctx := context.Background()

	seeded, err := Run(ctx, svc, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !seeded {
		t.Fatal("expected seed to run on an empty database")
	}

	sum, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalCases != 5 || sum.TotalCustomers != 10 || sum.TotalInvestigations != 7 || sum.TotalTargets != 9 {
		t.Errorf("totals = %+v", sum)
	}

	for _, creds := range []models.Credentials{
		{Username: "admin", Password: "admin123"},
		{Username: "user", Password: "user123"},
	} {
		res, err := svc.Login(ctx, creds)
		if err != nil {
			t.Fatalf("login %s: %v", creds.Username, err)
		}
		wantAdmin := creds.Username == "admin"
		if res.User.IsAdmin() != wantAdmin {
			t.Errorf("%s admin = %v, want %v", creds.Username, res.User.IsAdmin(), wantAdmin)
		}
	}

	seeded, err = Run(ctx, svc, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if seeded {
		t.Error("second run should skip")
	}
	sum, _ = svc.Dashboard(ctx)
	if sum.TotalCases != 5 {
		t.Errorf("second run duplicated cases: %d", sum.TotalCases)
	}
}

func TestRun_InvestigationDates(t *testing.T) {
	svc := caseservice.NewService(testutil.TestDB(t), auth.NewIssuer("test-secret", time.Hour))
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	opts := DefaultOptions()
	opts.Now = func() time.Time { return now }

	if _, err := Run(ctx, svc, opts); err != nil {
		t.Fatal(err)
	}
	page, err := svc.ListInvestigations(ctx, models.NewPageRequest(1, 100))
	if err != nil {
		t.Fatal(err)
	}
	for _, inv := range page.Items {
		if inv.StartDate == nil {
			t.Fatalf("investigation %d has no start date", inv.ID)
		}
		age := now.Sub(inv.StartDate.Time)
		if age < 29*24*time.Hour || age > 91*24*time.Hour {
			t.Errorf("investigation %d start %s outside 30-90 days back", inv.ID, inv.StartDate)
		}
		if inv.EndDate != nil && !inv.EndDate.After(inv.StartDate.Time) {
			t.Errorf("investigation %d ends before it starts", inv.ID)
		}
	}
}
