package caseservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/casedesk/internal/apperr"
	"github.com/starford/casedesk/internal/models"
	"github.com/starford/casedesk/internal/sse"
)

const caseNotFound = "case not found"

// ListCases returns one page of cases.
func (s *Service) ListCases(ctx context.Context, p models.PageRequest) (models.Page[models.Case], error) {
	return s.repo.ListCases(ctx, nil, p)
}

// GetCase returns a case with its child counts.
func (s *Service) GetCase(ctx context.Context, id int64) (*models.Case, error) {
	c, err := s.repo.GetCase(ctx, id)
	if err != nil {
		return nil, notFound(err, caseNotFound)
	}
	return c, nil
}

// CreateCase validates in and stores a new case.
func (s *Service) CreateCase(ctx context.Context, in models.CaseInput) (*models.Case, error) {
	if err := in.Validate(); err != nil {
		return nil, apperr.Invalid(err)
	}
	c := &models.Case{
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status.OrDefault(),
	}
	if err := s.repo.CreateCase(ctx, c); err != nil {
		return nil, err
	}
	s.publish(sse.KindCreated, EntityCase, c.ID)
	return c, nil
}

// UpdateCase applies the fields present in patch. A non-empty ifMatch must
// equal the current ETag.
func (s *Service) UpdateCase(ctx context.Context, id int64, patch models.CasePatch, ifMatch string) (*models.Case, error) {
	c, err := s.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkETag(c, ifMatch); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, apperr.Invalid(err)
	}
	patch.Apply(c)
	if err := s.repo.UpdateCase(ctx, c); err != nil {
		return nil, notFound(err, caseNotFound)
	}
	s.publish(sse.KindUpdated, EntityCase, c.ID)
	return c, nil
}

// DeleteCase removes a case, its descendants and its attachments.
func (s *Service) DeleteCase(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCase(ctx, id); err != nil {
		return notFound(err, caseNotFound)
	}
	if s.files != nil {
		if err := s.files.RemoveAll(attachmentDir(id)); err != nil {
			slog.Warn("remove case attachments failed", slog.Int64("case_id", id), slog.String("error", err.Error()))
		}
	}
	s.publish(sse.KindDeleted, EntityCase, id)
	return nil
}

// requireCase returns a not-found error naming the referenced case when it does not exist.
func (s *Service) requireCase(ctx context.Context, id int64) error {
	if _, err := s.repo.GetCase(ctx, id); err != nil {
		return notFound(err, fmt.Sprintf("specified case %d not found", id))
	}
	return nil
}
