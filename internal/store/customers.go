package store

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/casedesk/internal/models"
)

const selectCustomerSQL = `
	SELECT customers.id, customers.case_id, customers.name, customers.email, customers.phone,
	       customers.address, customers.status, customers.created_at, customers.updated_at
	FROM customers`

func scanCustomer(s scanner) (models.Customer, error) {
	var c models.Customer
	err := s.Scan(&c.ID, &c.CaseID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateCustomer inserts c. The parent case must exist.
func (db *DB) CreateCustomer(ctx context.Context, c *models.Customer) error {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO customers (case_id, name, email, phone, address, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CaseID, c.Name, c.Email, c.Phone, c.Address, c.Status, now, now)
	if err != nil {
		return fmt.Errorf("store: insert customer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: customer id: %w", err)
	}
	c.ID, c.CreatedAt, c.UpdatedAt = id, now, now
	return nil
}

// GetCustomer returns a single customer.
func (db *DB) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return getOne(ctx, db, "customers", selectCustomerSQL, id, scanCustomer)
}

// UpdateCustomer persists the mutable fields of c.
func (db *DB) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		UPDATE customers SET case_id = ?, name = ?, email = ?, phone = ?, address = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		c.CaseID, c.Name, c.Email, c.Phone, c.Address, c.Status, now, c.ID)
	if err != nil {
		return fmt.Errorf("store: update customer: %w", err)
	}
	if err := expectOne(res, "customers", c.ID); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

// DeleteCustomer removes a customer.
func (db *DB) DeleteCustomer(ctx context.Context, id int64) error {
	return deleteOne(ctx, db, "customers", id)
}

// ListCustomers returns one page of customers matching f.
func (db *DB) ListCustomers(ctx context.Context, f *Filter, p models.PageRequest) (models.Page[models.Customer], error) {
	return listPage(ctx, db, "customers", selectCustomerSQL, f, p, scanCustomer)
}

// CaseIDsByCustomerName returns the ids of cases owning a customer whose name contains name.
func (db *DB) CaseIDsByCustomerName(ctx context.Context, name string) ([]int64, error) {
	return idsWhereContains(ctx, db, "customers", "case_id", "name", name)
}
