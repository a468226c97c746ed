package caseservice

import (
	"context"

	"github.com/starford/casedesk/internal/apperr"
	"github.com/starford/casedesk/internal/models"
	"github.com/starford/casedesk/internal/sse"
	"github.com/starford/casedesk/internal/store"
)

const customerNotFound = "customer not found"

// ListCustomers returns one page of customers.
func (s *Service) ListCustomers(ctx context.Context, p models.PageRequest) (models.Page[models.Customer], error) {
	return s.repo.ListCustomers(ctx, nil, p)
}

// ListCustomersByCase returns one page of the customers of a case.
func (s *Service) ListCustomersByCase(ctx context.Context, caseID int64, p models.PageRequest) (models.Page[models.Customer], error) {
	if _, err := s.GetCase(ctx, caseID); err != nil {
		return models.Page[models.Customer]{}, err
	}
	return s.repo.ListCustomers(ctx, new(store.Filter).Equals("case_id", caseID), p)
}

// GetCustomer returns a single customer.
func (s *Service) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	c, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, notFound(err, customerNotFound)
	}
	return c, nil
}

// CreateCustomer validates in and stores a new customer under an existing case.
func (s *Service) CreateCustomer(ctx context.Context, in models.CustomerInput) (*models.Customer, error) {
	if err := in.Validate(); err != nil {
		return nil, apperr.Invalid(err)
	}
	if err := s.requireCase(ctx, in.CaseID); err != nil {
		return nil, err
	}
	c := &models.Customer{
		CaseID:  in.CaseID,
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
		Status:  in.Status.OrDefault(),
	}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}
	s.publish(sse.KindCreated, EntityCustomer, c.ID)
	return c, nil
}

// UpdateCustomer applies the fields present in patch. Re-parenting requires
// the new case to exist.
func (s *Service) UpdateCustomer(ctx context.Context, id int64, patch models.CustomerPatch, ifMatch string) (*models.Customer, error) {
	c, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkETag(c, ifMatch); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, apperr.Invalid(err)
	}
	if patch.CaseID.Set {
		if err := s.requireCase(ctx, patch.CaseID.Value); err != nil {
			return nil, err
		}
	}
	patch.Apply(c)
	if err := s.repo.UpdateCustomer(ctx, c); err != nil {
		return nil, notFound(err, customerNotFound)
	}
	s.publish(sse.KindUpdated, EntityCustomer, c.ID)
	return c, nil
}

// DeleteCustomer removes a customer.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return notFound(err, customerNotFound)
	}
	s.publish(sse.KindDeleted, EntityCustomer, id)
	return nil
}
