package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/casedesk/internal/apperr"
	"github.com/starford/casedesk/internal/models"
)

type scanner interface {
	Scan(dest ...any) error
}

// listPage runs a count query and a paged select against table, scanning
// each row with scan.
func listPage[T any](ctx context.Context, db *DB, table, selectSQL string, f *Filter, p models.PageRequest, scan func(scanner) (T, error)) (models.Page[T], error) {
	if f.matchesNothing() {
		return emptyPage[T](p), nil
	}
	where, args := f.where()

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+where, args...).Scan(&total); err != nil {
		return models.Page[T]{}, fmt.Errorf("store: count %s: %w", table, err)
	}

	query := selectSQL + where + ` ORDER BY ` + table + `.id LIMIT ? OFFSET ?`
	rows, err := db.conn.QueryContext(ctx, query, append(append([]any{}, args...), p.PerPage, p.Offset())...)
	if err != nil {
		return models.Page[T]{}, fmt.Errorf("store: list %s: %w", table, err)
	}
	defer rows.Close()

	items := make([]T, 0, p.PerPage)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return models.Page[T]{}, fmt.Errorf("store: scan %s: %w", table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return models.Page[T]{}, err
	}
	return models.Page[T]{Items: items, Pagination: models.NewPagination(p, total)}, nil
}

// getOne selects a single row by id, mapping sql.ErrNoRows to apperr.ErrNotFound.
func getOne[T any](ctx context.Context, db *DB, table, selectSQL string, id int64, scan func(scanner) (T, error)) (*T, error) {
	row := db.conn.QueryRowContext(ctx, selectSQL+` WHERE `+table+`.id = ?`, id)
	item, err := scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("store: %s %d: %w", table, id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("store: get %s %d: %w", table, id, err)
	}
	return &item, nil
}

// deleteOne removes a row by id. Child rows go through ON DELETE CASCADE.
func deleteOne(ctx context.Context, db *DB, table string, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete %s %d: %w", table, id, err)
	}
	return expectOne(res, table, id)
}

func expectOne(res sql.Result, table string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("store: %s %d: %w", table, id, apperr.ErrNotFound)
	}
	return nil
}

// idsWhereContains returns the distinct parent ids of rows whose col matches value.
func idsWhereContains(ctx context.Context, db *DB, table, idCol, col, value string) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT `+idCol+` FROM `+table+` WHERE `+col+` LIKE ? ESCAPE '\'`,
		"%"+escapeLike(value)+"%")
	if err != nil {
		return nil, fmt.Errorf("store: %s ids: %w", table, err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
