package store

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/casedesk/internal/models"
)

const selectTargetSQL = `
	SELECT targets.id, targets.investigation_id, targets.name, targets.type, targets.details,
	       targets.status, targets.created_at, targets.updated_at
	FROM targets`

func scanTarget(s scanner) (models.Target, error) {
	var t models.Target
	err := s.Scan(&t.ID, &t.InvestigationID, &t.Name, &t.Type, &t.Details, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// CreateTarget inserts t. The parent investigation must exist.
func (db *DB) CreateTarget(ctx context.Context, t *models.Target) error {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO targets (investigation_id, name, type, details, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.InvestigationID, t.Name, t.Type, t.Details, t.Status, now, now)
	if err != nil {
		return fmt.Errorf("store: insert target: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: target id: %w", err)
	}
	t.ID, t.CreatedAt, t.UpdatedAt = id, now, now
	return nil
}

// GetTarget returns a single target.
func (db *DB) GetTarget(ctx context.Context, id int64) (*models.Target, error) {
	return getOne(ctx, db, "targets", selectTargetSQL, id, scanTarget)
}

// UpdateTarget persists the mutable fields of t.
func (db *DB) UpdateTarget(ctx context.Context, t *models.Target) error {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		UPDATE targets SET investigation_id = ?, name = ?, type = ?, details = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		t.InvestigationID, t.Name, t.Type, t.Details, t.Status, now, t.ID)
	if err != nil {
		return fmt.Errorf("store: update target: %w", err)
	}
	if err := expectOne(res, "targets", t.ID); err != nil {
		return err
	}
	t.UpdatedAt = now
	return nil
}

// DeleteTarget removes a target.
func (db *DB) DeleteTarget(ctx context.Context, id int64) error {
	return deleteOne(ctx, db, "targets", id)
}

// ListTargets returns one page of targets matching f.
func (db *DB) ListTargets(ctx context.Context, f *Filter, p models.PageRequest) (models.Page[models.Target], error) {
	return listPage(ctx, db, "targets", selectTargetSQL, f, p, scanTarget)
}

// InvestigationIDsByTargetName returns the ids of investigations owning a target whose name contains name.
func (db *DB) InvestigationIDsByTargetName(ctx context.Context, name string) ([]int64, error) {
	return idsWhereContains(ctx, db, "targets", "investigation_id", "name", name)
}
