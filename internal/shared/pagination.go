package shared

import "math"

// DefaultPerPage is the page size used when none was requested.
const DefaultPerPage = 30

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata. TotalPages is never below
// one: an empty result set is a single empty page, so consumers always
// render page 1 of 1 rather than page 1 of 0.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the row offset of the first item on the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}
