// Package seed fills an empty database with demo accounts and records.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/starford/casedesk/internal/caseservice"
	"github.com/starford/casedesk/internal/models"
)

// Account is a user created by the seeder.
type Account struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Options controls the generated data.
type Options struct {
	Admin   Account
	General Account
	// Rand picks parents, statuses and dates. Nil uses a fixed seed.
	Rand *rand.Rand
	Now  func() time.Time
}

// DefaultOptions returns the demo accounts admin/admin123 and user/user123.
func DefaultOptions() Options {
	return Options{
		Admin:   Account{Username: "admin", Email: "admin@example.com", Password: "admin123"},
		General: Account{Username: "user", Email: "user@example.com", Password: "user123"},
	}
}

var (
	caseNames = []struct{ name, description string }{
		{"Unauthorized access", "Intrusion into internal systems"},
		{"Data leak", "Leak of customer records"},
		{"Insider fraud", "Possible fraud by an employee"},
		{"Security audit", "Review of the security posture"},
		{"Compliance review", "Possible compliance violations"},
	}
	customerNames = []string{
		"Tanaka Corp", "Suzuki Trading", "Sato Industries", "Takahashi Electric", "Ito Goods",
		"Watanabe Construction", "Yamamoto Works", "Nakamura Store", "Kobayashi Logistics", "Kato Engineering",
	}
	investigations = []struct{ title, description string }{
		{"System log analysis", "Trace unauthorized access in system logs"},
		{"Network traffic analysis", "Look for anomalous traffic"},
		{"Endpoint forensics", "Forensic imaging of the affected endpoints"},
		{"Mail review", "Check mailboxes for signs of exfiltration"},
		{"Access rights review", "Audit system permissions"},
		{"Backup review", "Check backups for tampering"},
		{"Cloud usage review", "Review use of cloud services"},
	}
	targets = []struct{ name, details string }{
		{"Web server", "Apache 2.4.41"},
		{"Database server", "PostgreSQL 12.4"},
		{"Employee PC", "Windows 10 workstation"},
		{"File server", "Samba 4.11.6"},
		{"Mail server", "Exchange 2019"},
		{"Cloud storage", "AWS S3 bucket"},
		{"Backup server", "Bacula 9.4.2"},
		{"Core switch", "Cisco Catalyst 3850"},
		{"Mobile device", "iPhone running iOS 14.4"},
	}
	targetTypes = []string{"server", "pc", "network", "mobile", "cloud"}
)

// Run creates the accounts and sample records unless any user already
// exists. It reports whether data was written.
func Run(ctx context.Context, svc *caseservice.Service, opts Options) (bool, error) {
	exists, err := svc.HasUsers(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		slog.Info("database already contains users, skipping seed")
		return false, nil
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	pick := func(n int) int { return rng.IntN(n) }
	status := func() models.Status { return models.Statuses[pick(len(models.Statuses))] }

	for _, acc := range []struct {
		Account
		role string
	}{{opts.Admin, models.RoleAdmin}, {opts.General, models.RoleGeneral}} {
		if _, err := svc.Register(ctx, models.UserInput{Username: acc.Username, Email: acc.Email, Password: acc.Password, Role: acc.role}); err != nil {
			return false, fmt.Errorf("seed user %s: %w", acc.Username, err)
		}
	}

	caseIDs := make([]int64, 0, len(caseNames))
	for _, c := range caseNames {
		created, err := svc.CreateCase(ctx, models.CaseInput{Name: c.name, Description: c.description, Status: status()})
		if err != nil {
			return false, fmt.Errorf("seed case: %w", err)
		}
		caseIDs = append(caseIDs, created.ID)
	}

	for i, name := range customerNames {
		_, err := svc.CreateCustomer(ctx, models.CustomerInput{
			CaseID:  caseIDs[pick(len(caseIDs))],
			Name:    name,
			Email:   fmt.Sprintf("contact%d@example.com", i+1),
			Phone:   fmt.Sprintf("03-%04d-%04d", 1000+pick(9000), 1000+pick(9000)),
			Address: fmt.Sprintf("%d-%d-%d Marunouchi, Chiyoda, Tokyo", 1+pick(3), 1+pick(10), 1+pick(20)),
		})
		if err != nil {
			return false, fmt.Errorf("seed customer: %w", err)
		}
	}

	invIDs := make([]int64, 0, len(investigations))
	for _, inv := range investigations {
		start := now().AddDate(0, 0, -(30 + pick(61)))
		in := models.InvestigationInput{
			CaseID:      caseIDs[pick(len(caseIDs))],
			Title:       inv.title,
			Description: inv.description,
			Status:      status(),
			StartDate:   start.Format(models.DateLayout),
		}
		if rng.Float64() > 0.3 {
			in.EndDate = start.AddDate(0, 0, 7+pick(24)).Format(models.DateLayout)
		}
		created, err := svc.CreateInvestigation(ctx, in)
		if err != nil {
			return false, fmt.Errorf("seed investigation: %w", err)
		}
		invIDs = append(invIDs, created.ID)
	}

	for _, tg := range targets {
		_, err := svc.CreateTarget(ctx, models.TargetInput{
			InvestigationID: invIDs[pick(len(invIDs))],
			Name:            tg.name,
			Type:            targetTypes[pick(len(targetTypes))],
			Details:         tg.details,
			Status:          status(),
		})
		if err != nil {
			return false, fmt.Errorf("seed target: %w", err)
		}
	}

	slog.Info("database seeded",
		slog.Int("cases", len(caseNames)),
		slog.Int("customers", len(customerNames)),
		slog.Int("investigations", len(investigations)),
		slog.Int("targets", len(targets)),
	)
	return true, nil
}
