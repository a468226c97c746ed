// Package caseservice implements the record, search and account use cases on
// top of the store.
package caseservice

import (
	"errors"

	"github.com/starford/casedesk/internal/apperr"
	"github.com/starford/casedesk/internal/auth"
	"github.com/starford/casedesk/internal/checksum"
	"github.com/starford/casedesk/internal/sse"
	"github.com/starford/casedesk/internal/storage"
	"github.com/starford/casedesk/internal/store"
)

// Entity names used in change events.
const (
	EntityCase          = "case"
	EntityCustomer      = "customer"
	EntityInvestigation = "investigation"
	EntityTarget        = "target"
)

// EventPublisher receives record change notifications.
type EventPublisher interface {
	PublishRecordEvent(kind, entity string, id int64)
}

type nopPublisher struct{}

func (nopPublisher) PublishRecordEvent(string, string, int64) {}

// Service coordinates store, token and attachment operations.
type Service struct {
	repo   store.Repository
	tokens *auth.Issuer
	events EventPublisher
	files  storage.Provider
}

// Option configures a Service.
type Option func(*Service)

// WithEvents publishes record changes to p.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithAttachments enables per-case attachment storage.
func WithAttachments(files storage.Provider) Option {
	return func(s *Service) {
		s.files = files
	}
}

// NewService creates a new case service.
func NewService(repo store.Repository, tokens *auth.Issuer, opts ...Option) *Service {
	s := &Service{repo: repo, tokens: tokens, events: nopPublisher{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) publish(kind, entity string, id int64) {
	s.events.PublishRecordEvent(kind, entity, id)
}

// checkETag fails with ErrConflict when ifMatch is set and differs from the
// current record's ETag.
func checkETag(current any, ifMatch string) error {
	if ifMatch == "" {
		return nil
	}
	tag, err := checksum.ETag(current)
	if err != nil {
		return err
	}
	if tag != ifMatch {
		return apperr.New(apperr.ErrConflict, "record was modified by someone else")
	}
	return nil
}

// notFound rewrites a store not-found error into one with a client message.
func notFound(err error, msg string) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.New(apperr.ErrNotFound, msg)
	}
	return err
}

var _ EventPublisher = (*sse.Broker)(nil)
