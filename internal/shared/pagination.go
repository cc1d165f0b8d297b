package shared

// defaultPerPage is the listing page size when the client sends none.
const defaultPerPage = 20

// Pagination describes one page of a proxied entity listing. The admin
// service paginates in memory after filtering the collaborator's collection,
// so Total always reflects the filtered count.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination clamps page and per-page to sane values and computes the page
// count. A page past the end is kept as requested; Slice yields an empty
// window for it.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (total + perPage - 1) / perPage
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}
