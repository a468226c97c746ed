package caseservice

import (
	"context"
	"fmt"

	"github.com/starford/casedesk/internal/apperr"
	"github.com/starford/casedesk/internal/models"
	"github.com/starford/casedesk/internal/sse"
	"github.com/starford/casedesk/internal/store"
)

const investigationNotFound = "investigation not found"

// ListInvestigations returns one page of investigations.
func (s *Service) ListInvestigations(ctx context.Context, p models.PageRequest) (models.Page[models.Investigation], error) {
	return s.repo.ListInvestigations(ctx, nil, p)
}

// ListInvestigationsByCase returns one page of the investigations of a case.
func (s *Service) ListInvestigationsByCase(ctx context.Context, caseID int64, p models.PageRequest) (models.Page[models.Investigation], error) {
	if _, err := s.GetCase(ctx, caseID); err != nil {
		return models.Page[models.Investigation]{}, err
	}
	return s.repo.ListInvestigations(ctx, new(store.Filter).Equals("case_id", caseID), p)
}

// GetInvestigation returns an investigation with its target count.
func (s *Service) GetInvestigation(ctx context.Context, id int64) (*models.Investigation, error) {
	inv, err := s.repo.GetInvestigation(ctx, id)
	if err != nil {
		return nil, notFound(err, investigationNotFound)
	}
	return inv, nil
}

// CreateInvestigation validates in and stores a new investigation under an existing case.
func (s *Service) CreateInvestigation(ctx context.Context, in models.InvestigationInput) (*models.Investigation, error) {
	if err := in.Validate(); err != nil {
		return nil, apperr.Invalid(err)
	}
	if err := s.requireCase(ctx, in.CaseID); err != nil {
		return nil, err
	}
	start, err := models.ParseDate(in.StartDate)
	if err != nil {
		return nil, apperr.Invalid(err)
	}
	end, err := models.ParseDate(in.EndDate)
	if err != nil {
		return nil, apperr.Invalid(err)
	}
	inv := &models.Investigation{
		CaseID:      in.CaseID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status.OrDefault(),
		StartDate:   start,
		EndDate:     end,
	}
	if err := s.repo.CreateInvestigation(ctx, inv); err != nil {
		return nil, err
	}
	s.publish(sse.KindCreated, EntityInvestigation, inv.ID)
	return inv, nil
}

// UpdateInvestigation applies the fields present in patch.
func (s *Service) UpdateInvestigation(ctx context.Context, id int64, patch models.InvestigationPatch, ifMatch string) (*models.Investigation, error) {
	inv, err := s.GetInvestigation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkETag(inv, ifMatch); err != nil {
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
	patch.Apply(inv)
	if err := s.repo.UpdateInvestigation(ctx, inv); err != nil {
		return nil, notFound(err, investigationNotFound)
	}
	s.publish(sse.KindUpdated, EntityInvestigation, inv.ID)
	return inv, nil
}

// DeleteInvestigation removes an investigation and its targets.
func (s *Service) DeleteInvestigation(ctx context.Context, id int64) error {
	if err := s.repo.DeleteInvestigation(ctx, id); err != nil {
		return notFound(err, investigationNotFound)
	}
	s.publish(sse.KindDeleted, EntityInvestigation, id)
	return nil
}

func (s *Service) requireInvestigation(ctx context.Context, id int64) error {
	if _, err := s.repo.GetInvestigation(ctx, id); err != nil {
		return notFound(err, fmt.Sprintf("specified investigation %d not found", id))
	}
	return nil
}
