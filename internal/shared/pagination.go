package shared

import "math"

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	page, perPage = ClampPagination(page, perPage)
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// ClampPagination bounds page and per-page values to sane limits.
func ClampPagination(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > 999999 {
		page = 999999
	}
	if perPage <= 0 {
		perPage = 50
	}
	if perPage > 1000 {
		perPage = 1000
	}
	return page, perPage
}
