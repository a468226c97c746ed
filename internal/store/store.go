package store

import (
	"context"

	"github.com/starford/casedesk/internal/models"
)

// Repository defines the persistence operations the service layer needs.
// Consumers depend on this interface rather than the concrete *DB type.
type Repository interface {
	CreateCase(ctx context.Context, c *models.Case) error
	GetCase(ctx context.Context, id int64) (*models.Case, error)
	UpdateCase(ctx context.Context, c *models.Case) error
	DeleteCase(ctx context.Context, id int64) error
	ListCases(ctx context.Context, f *Filter, p models.PageRequest) (models.Page[models.Case], error)

	CreateCustomer(ctx context.Context, c *models.Customer) error
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, c *models.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
	ListCustomers(ctx context.Context, f *Filter, p models.PageRequest) (models.Page[models.Customer], error)
	CaseIDsByCustomerName(ctx context.Context, name string) ([]int64, error)

	CreateInvestigation(ctx context.Context, inv *models.Investigation) error
	GetInvestigation(ctx context.Context, id int64) (*models.Investigation, error)
	UpdateInvestigation(ctx context.Context, inv *models.Investigation) error
	DeleteInvestigation(ctx context.Context, id int64) error
	ListInvestigations(ctx context.Context, f *Filter, p models.PageRequest) (models.Page[models.Investigation], error)

	CreateTarget(ctx context.Context, t *models.Target) error
	GetTarget(ctx context.Context, id int64) (*models.Target, error)
	UpdateTarget(ctx context.Context, t *models.Target) error
	DeleteTarget(ctx context.Context, id int64) error
	ListTargets(ctx context.Context, f *Filter, p models.PageRequest) (models.Page[models.Target], error)
	InvestigationIDsByTargetName(ctx context.Context, name string) ([]int64, error)

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UserExists(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
	CountUsers(ctx context.Context) (int, error)

	Summary(ctx context.Context) (*models.DashboardSummary, error)
	Close() error
}

// Verify *DB satisfies Repository at compile time.
var _ Repository = (*DB)(nil)
