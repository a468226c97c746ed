package store

import (
	"strings"

	"github.com/starford/casedesk/internal/models"
)

// Filter accumulates AND-ed WHERE conditions for a listing query.
type Filter struct {
	conds []string
	args  []any
	empty bool
}

// Contains adds a case-insensitive substring match on col.
func (f *Filter) Contains(col, value string) *Filter {
	f.conds = append(f.conds, col+` LIKE ? ESCAPE '\'`)
	f.args = append(f.args, "%"+escapeLike(value)+"%")
	return f
}

// Equals adds an equality match on col.
func (f *Filter) Equals(col string, value any) *Filter {
	f.conds = append(f.conds, col+" = ?")
	f.args = append(f.args, value)
	return f
}

// In restricts col to ids. An empty id list matches nothing.
func (f *Filter) In(col string, ids []int64) *Filter {
	if len(ids) == 0 {
		f.empty = true
		return f
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	f.conds = append(f.conds, col+" IN ("+marks+")")
	for _, id := range ids {
		f.args = append(f.args, id)
	}
	return f
}

func (f *Filter) where() (string, []any) {
	if f == nil || len(f.conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(f.conds, " AND "), f.args
}

func (f *Filter) matchesNothing() bool {
	return f != nil && f.empty
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func emptyPage[T any](p models.PageRequest) models.Page[T] {
	return models.Page[T]{Items: []T{}, Pagination: models.NewPagination(p, 0)}
}
