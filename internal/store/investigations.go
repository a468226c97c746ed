package store

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/casedesk/internal/models"
)

const selectInvestigationSQL = `
	SELECT investigations.id, investigations.case_id, investigations.title, investigations.description,
	       investigations.status, investigations.start_date, investigations.end_date,
	       investigations.created_at, investigations.updated_at,
	       (SELECT COUNT(*) FROM targets WHERE targets.investigation_id = investigations.id)
	FROM investigations`

func scanInvestigation(s scanner) (models.Investigation, error) {
	var (
		inv        models.Investigation
		start, end nullDate
	)
	err := s.Scan(&inv.ID, &inv.CaseID, &inv.Title, &inv.Description, &inv.Status, &start, &end,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.TargetCount)
	inv.StartDate, inv.EndDate = start.ptr(), end.ptr()
	return inv, err
}

// CreateInvestigation inserts inv. The parent case must exist.
func (db *DB) CreateInvestigation(ctx context.Context, inv *models.Investigation) error {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO investigations (case_id, title, description, status, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.CaseID, inv.Title, inv.Description, inv.Status, dateArg(inv.StartDate), dateArg(inv.EndDate), now, now)
	if err != nil {
		return fmt.Errorf("store: insert investigation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: investigation id: %w", err)
	}
	inv.ID, inv.CreatedAt, inv.UpdatedAt = id, now, now
	return nil
}

// GetInvestigation returns an investigation with its target count.
func (db *DB) GetInvestigation(ctx context.Context, id int64) (*models.Investigation, error) {
	return getOne(ctx, db, "investigations", selectInvestigationSQL, id, scanInvestigation)
}

// UpdateInvestigation persists the mutable fields of inv.
func (db *DB) UpdateInvestigation(ctx context.Context, inv *models.Investigation) error {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		UPDATE investigations
		SET case_id = ?, title = ?, description = ?, status = ?, start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ?`,
		inv.CaseID, inv.Title, inv.Description, inv.Status, dateArg(inv.StartDate), dateArg(inv.EndDate), now, inv.ID)
	if err != nil {
		return fmt.Errorf("store: update investigation: %w", err)
	}
	if err := expectOne(res, "investigations", inv.ID); err != nil {
		return err
	}
	inv.UpdatedAt = now
	return nil
}

// DeleteInvestigation removes an investigation and its targets.
func (db *DB) DeleteInvestigation(ctx context.Context, id int64) error {
	return deleteOne(ctx, db, "investigations", id)
}

// ListInvestigations returns one page of investigations matching f.
func (db *DB) ListInvestigations(ctx context.Context, f *Filter, p models.PageRequest) (models.Page[models.Investigation], error) {
	return listPage(ctx, db, "investigations", selectInvestigationSQL, f, p, scanInvestigation)
}

type nullDate struct {
	d     models.Date
	valid bool
}

func (n *nullDate) Scan(src any) error {
	if src == nil {
		n.valid = false
		return nil
	}
	n.valid = true
	return n.d.Scan(src)
}

func (n nullDate) ptr() *models.Date {
	if !n.valid {
		return nil
	}
	d := n.d
	return &d
}

func dateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}
