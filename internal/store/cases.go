package store

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/casedesk/internal/models"
)

const selectCaseSQL = `
	SELECT cases.id, cases.name, cases.description, cases.status, cases.created_at, cases.updated_at,
	       (SELECT COUNT(*) FROM customers WHERE customers.case_id = cases.id),
	       (SELECT COUNT(*) FROM investigations WHERE investigations.case_id = cases.id)
	FROM cases`

func scanCase(s scanner) (models.Case, error) {
	var c models.Case
	err := s.Scan(&c.ID, &c.Name, &c.Description, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		&c.CustomerCount, &c.InvestigationCount)
	return c, err
}

// CreateCase inserts c and fills in its id and timestamps.
func (db *DB) CreateCase(ctx context.Context, c *models.Case) error {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO cases (name, description, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.Name, c.Description, c.Status, now, now)
	if err != nil {
		return fmt.Errorf("store: insert case: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: case id: %w", err)
	}
	c.ID, c.CreatedAt, c.UpdatedAt = id, now, now
	return nil
}

// GetCase returns the case with its child counts.
func (db *DB) GetCase(ctx context.Context, id int64) (*models.Case, error) {
	return getOne(ctx, db, "cases", selectCaseSQL, id, scanCase)
}

// UpdateCase persists the mutable fields of c and bumps updated_at.
func (db *DB) UpdateCase(ctx context.Context, c *models.Case) error {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE cases SET name = ?, description = ?, status = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Description, c.Status, now, c.ID)
	if err != nil {
		return fmt.Errorf("store: update case: %w", err)
	}
	if err := expectOne(res, "cases", c.ID); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

// DeleteCase removes a case together with its customers, investigations and their targets.
func (db *DB) DeleteCase(ctx context.Context, id int64) error {
	return deleteOne(ctx, db, "cases", id)
}

// ListCases returns one page of cases matching f.
func (db *DB) ListCases(ctx context.Context, f *Filter, p models.PageRequest) (models.Page[models.Case], error) {
	return listPage(ctx, db, "cases", selectCaseSQL, f, p, scanCase)
}
