// Package storage defines the file-system abstraction for case attachments.
package storage

import (
	"io"

	"github.com/starford/casedesk/internal/models"
)

// Provider is the interface for attachment file operations.
type Provider interface {
	// List returns metadata for every file directly under dir (relative to root).
	List(dir string) ([]models.Attachment, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically streams r into path (relative to root) and returns the byte count.
	Write(path string, r io.Reader) (int64, error)
	// Delete removes the file at path (relative to root).
	Delete(path string) error
	// RemoveAll removes dir and everything beneath it.
	RemoveAll(dir string) error
}
