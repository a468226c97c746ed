package caseservice

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/starford/casedesk/internal/apperr"
	"github.com/starford/casedesk/internal/models"
	"github.com/starford/casedesk/internal/store"
)

// Search runs the advanced search. Each selected entity is queried
// concurrently and paginated independently with p.
func (s *Service) Search(ctx context.Context, params models.SearchParams, p models.PageRequest) (*models.SearchResults, error) {
	if err := params.Validate(); err != nil {
		return nil, apperr.Invalid(err)
	}
	res := models.NewSearchResults()

	caseFilter := new(store.Filter)
	addContains(caseFilter, "name", params.Name)
	addEquals(caseFilter, "status", params.Status)
	addContains(caseFilter, "description", params.Description)

	invFilter := new(store.Filter)
	addContains(invFilter, "title", params.Title)
	addEquals(invFilter, "status", params.Status)
	addContains(invFilter, "description", params.Description)
	addID(invFilter, "case_id", params.CaseID)

	// A sent but empty owner name matches every owner.
	if params.CrossEntity {
		if params.CustomerName.Set && !params.CustomerName.Null && params.Wants(models.EntityCases) {
			ids, err := s.repo.CaseIDsByCustomerName(ctx, params.CustomerName.Value)
			if err != nil {
				return nil, err
			}
			if len(ids) > 0 {
				caseFilter = new(store.Filter).In("id", ids)
			}
		}
		if params.TargetName.Set && !params.TargetName.Null && params.Wants(models.EntityInvestigations) {
			ids, err := s.repo.InvestigationIDsByTargetName(ctx, params.TargetName.Value)
			if err != nil {
				return nil, err
			}
			if len(ids) > 0 {
				invFilter = new(store.Filter).In("id", ids)
			}
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if params.Wants(models.EntityCases) {
		g.Go(func() error {
			page, err := s.repo.ListCases(ctx, caseFilter, p)
			res.Cases = page.Items
			return err
		})
	}
	if params.Wants(models.EntityCustomers) {
		g.Go(func() error {
			f := new(store.Filter)
			addContains(f, "name", params.Name)
			addContains(f, "email", params.Email)
			addContains(f, "phone", params.Phone)
			addContains(f, "address", params.Address)
			addID(f, "case_id", params.CaseID)
			page, err := s.repo.ListCustomers(ctx, f, p)
			res.Customers = page.Items
			return err
		})
	}
	if params.Wants(models.EntityInvestigations) {
		g.Go(func() error {
			page, err := s.repo.ListInvestigations(ctx, invFilter, p)
			res.Investigations = page.Items
			return err
		})
	}
	if params.Wants(models.EntityTargets) {
		g.Go(func() error {
			f := new(store.Filter)
			addContains(f, "name", params.Name)
			addContains(f, "type", params.Type)
			addEquals(f, "status", params.Status)
			addContains(f, "details", params.Details)
			addID(f, "investigation_id", params.InvestigationID)
			page, err := s.repo.ListTargets(ctx, f, p)
			res.Targets = page.Items
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// Dashboard returns record totals and the case status distribution.
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	return s.repo.Summary(ctx)
}

func addContains(f *store.Filter, col string, v models.Field[string]) {
	if v.Set && !v.Null {
		f.Contains(col, v.Value)
	}
}

func addEquals[T comparable](f *store.Filter, col string, v models.Field[T]) {
	if v.Set && !v.Null {
		f.Equals(col, v.Value)
	}
}

func addID(f *store.Filter, col string, v models.Field[models.SearchID]) {
	if v.Set && !v.Null {
		f.Equals(col, v.Value.Int64())
	}
}
