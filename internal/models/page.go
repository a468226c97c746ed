package models

import "math"

// Paging defaults.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// maxPage keeps Offset within int for every allowed per_page.
const maxPage = math.MaxInt/MaxPerPage + 1

// PageRequest selects one page of a listing.
type PageRequest struct {
	Page    int
	PerPage int
}

// NewPageRequest normalises raw page parameters: non-positive values fall back
// to defaults, per_page is capped at MaxPerPage and page is capped so the
// offset cannot overflow.
func NewPageRequest(page, perPage int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if page > maxPage {
		page = maxPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return PageRequest{Page: page, PerPage: perPage}
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// NewPagination computes the pagination block for total rows.
func NewPagination(p PageRequest, total int) Pagination {
	pages := 0
	if total > 0 {
		pages = (total + p.PerPage - 1) / p.PerPage
	}
	return Pagination{
		Total:   total,
		Pages:   pages,
		Page:    p.Page,
		PerPage: p.PerPage,
		HasNext: p.Page < pages,
		HasPrev: p.Page > 1,
	}
}

// Page is one page of records plus its pagination block.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}
