package caseservice

import (
	"context"

	"github.com/starford/casedesk/internal/apperr"
	"github.com/starford/casedesk/internal/models"
	"github.com/starford/casedesk/internal/sse"
	"github.com/starford/casedesk/internal/store"
)

const targetNotFound = "target not found"

// ListTargets returns one page of targets.
func (s *Service) ListTargets(ctx context.Context, p models.PageRequest) (models.Page[models.Target], error) {
	return s.repo.ListTargets(ctx, nil, p)
}

// ListTargetsByInvestigation returns one page of the targets of an investigation.
func (s *Service) ListTargetsByInvestigation(ctx context.Context, investigationID int64, p models.PageRequest) (models.Page[models.Target], error) {
	if _, err := s.GetInvestigation(ctx, investigationID); err != nil {
		return models.Page[models.Target]{}, err
	}
	return s.repo.ListTargets(ctx, new(store.Filter).Equals("investigation_id", investigationID), p)
}

// GetTarget returns a single target.
func (s *Service) GetTarget(ctx context.Context, id int64) (*models.Target, error) {
	t, err := s.repo.GetTarget(ctx, id)
	if err != nil {
		return nil, notFound(err, targetNotFound)
	}
	return t, nil
}

// CreateTarget validates in and stores a new target under an existing investigation.
func (s *Service) CreateTarget(ctx context.Context, in models.TargetInput) (*models.Target, error) {
	if err := in.Validate(); err != nil {
		return nil, apperr.Invalid(err)
	}
	if err := s.requireInvestigation(ctx, in.InvestigationID); err != nil {
		return nil, err
	}
	t := &models.Target{
		InvestigationID: in.InvestigationID,
		Name:            in.Name,
		Type:            in.Type,
		Details:         in.Details,
		Status:          in.Status.OrDefault(),
	}
	if err := s.repo.CreateTarget(ctx, t); err != nil {
		return nil, err
	}
	s.publish(sse.KindCreated, EntityTarget, t.ID)
	return t, nil
}

// UpdateTarget applies the fields present in patch.
func (s *Service) UpdateTarget(ctx context.Context, id int64, patch models.TargetPatch, ifMatch string) (*models.Target, error) {
	t, err := s.GetTarget(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkETag(t, ifMatch); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, apperr.Invalid(err)
	}
	if patch.InvestigationID.Set {
		if err := s.requireInvestigation(ctx, patch.InvestigationID.Value); err != nil {
			return nil, err
		}
	}
	patch.Apply(t)
	if err := s.repo.UpdateTarget(ctx, t); err != nil {
		return nil, notFound(err, targetNotFound)
	}
	s.publish(sse.KindUpdated, EntityTarget, t.ID)
	return t, nil
}

// DeleteTarget removes a target.
func (s *Service) DeleteTarget(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTarget(ctx, id); err != nil {
		return notFound(err, targetNotFound)
	}
	s.publish(sse.KindDeleted, EntityTarget, id)
	return nil
}
