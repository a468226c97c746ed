package store

import (
	"context"
	"fmt"

	"github.com/starford/casedesk/internal/models"
)

// Summary returns record totals and the case status distribution.
func (db *DB) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	s := &models.DashboardSummary{CaseStatus: map[models.Status]int{}}
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM cases),
			(SELECT COUNT(*) FROM customers),
			(SELECT COUNT(*) FROM investigations),
			(SELECT COUNT(*) FROM targets)`).
		Scan(&s.TotalCases, &s.TotalCustomers, &s.TotalInvestigations, &s.TotalTargets)
	if err != nil {
		return nil, fmt.Errorf("store: summary totals: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `SELECT status, COUNT(*) FROM cases GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("store: summary statuses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status models.Status
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		s.CaseStatus[status] = n
	}
	return s, rows.Err()
}
