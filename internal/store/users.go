package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/casedesk/internal/apperr"
	"github.com/starford/casedesk/internal/models"
)

const selectUserSQL = `SELECT id, username, email, role, password_hash, created_at FROM users`

func scanUser(s scanner) (*models.User, error) {
	var u models.User
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts u. Username and email must be unique.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.Role, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("store: insert user %s: %w", u.Username, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("store: insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: user id: %w", err)
	}
	u.ID, u.CreatedAt = id, now
	return nil
}

// GetUser returns the user with the given id.
func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx, selectUserSQL+` WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("store: user %d: %w", id, err)
	}
	return u, nil
}

// GetUserByUsername returns the user with the given username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx, selectUserSQL+` WHERE username = ?`, username))
	if err != nil {
		return nil, fmt.Errorf("store: user %q: %w", username, err)
	}
	return u, nil
}

// UserExists reports which of username and email are already registered.
func (db *DB) UserExists(ctx context.Context, username, email string) (bool, bool, error) {
	var byName, byEmail int
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE username = ?),
			(SELECT COUNT(*) FROM users WHERE email = ?)`,
		username, email).Scan(&byName, &byEmail)
	if err != nil {
		return false, false, fmt.Errorf("store: user exists: %w", err)
	}
	return byName > 0, byEmail > 0, nil
}

// CountUsers returns the number of registered users.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count users: %w", err)
	}
	return n, nil
}
