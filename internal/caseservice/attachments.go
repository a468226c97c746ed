package caseservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/casedesk/internal/apperr"
	"github.com/starford/casedesk/internal/models"
)

var errNoAttachments = apperr.New(apperr.ErrNotFound, "attachments are not enabled")

func attachmentDir(caseID int64) string {
	return fmt.Sprintf("case-%d", caseID)
}

// attachmentPath validates that name is a plain file name and returns its
// path relative to the attachments root.
func attachmentPath(caseID int64, name string) (string, error) {
	if name == "" {
		return "", apperr.New(apperr.ErrInvalidInput, "filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") || strings.HasPrefix(cleaned, ".") {
		return "", apperr.New(apperr.ErrInvalidInput, "invalid filename: "+name)
	}
	return path.Join(attachmentDir(caseID), cleaned), nil
}

// ListAttachments returns the files stored for a case.
func (s *Service) ListAttachments(ctx context.Context, caseID int64) ([]models.Attachment, error) {
	if s.files == nil {
		return nil, errNoAttachments
	}
	if _, err := s.GetCase(ctx, caseID); err != nil {
		return nil, err
	}
	return s.files.List(attachmentDir(caseID))
}

// UploadAttachment stores r as name under the case, replacing any file with the same name.
func (s *Service) UploadAttachment(ctx context.Context, caseID int64, name string, r io.Reader) (*models.Attachment, error) {
	if s.files == nil {
		return nil, errNoAttachments
	}
	if _, err := s.GetCase(ctx, caseID); err != nil {
		return nil, err
	}
	p, err := attachmentPath(caseID, name)
	if err != nil {
		return nil, err
	}
	if _, err := s.files.Write(p, r); err != nil {
		return nil, err
	}
	list, err := s.files.List(attachmentDir(caseID))
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Name == filepath.Base(p) {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("attachment %s missing after write", p)
}

// ReadAttachment returns the content of a stored file.
func (s *Service) ReadAttachment(ctx context.Context, caseID int64, name string) ([]byte, error) {
	if s.files == nil {
		return nil, errNoAttachments
	}
	if _, err := s.GetCase(ctx, caseID); err != nil {
		return nil, err
	}
	p, err := attachmentPath(caseID, name)
	if err != nil {
		return nil, err
	}
	data, err := s.files.Read(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperr.New(apperr.ErrNotFound, "attachment not found")
	}
	return data, err
}
