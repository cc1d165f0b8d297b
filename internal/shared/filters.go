package shared

import (
	"net/http"
	"strconv"
	"strings"
)

// ListFilters represents standard list page filters for proxied entity
// listings.
type ListFilters struct {
	Page     int
	Limit    int
	Search   string
	SortBy   string
	SortDir  string
	IsActive *bool

	// Entity specific filters
	Category   *string
	SupplierID *string
}

// ParseListFilters reads the standard listing query parameters. Unknown or
// malformed values fall back to defaults rather than failing the request.
func ParseListFilters(r *http.Request) ListFilters {
	q := r.URL.Query()

	f := ListFilters{
		Page:    1,
		Limit:   defaultPerPage,
		Search:  strings.TrimSpace(q.Get("search")),
		SortBy:  q.Get("sort_by"),
		SortDir: strings.ToLower(q.Get("sort_dir")),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		f.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= 100 {
		f.Limit = limit
	}
	if f.SortDir != "desc" {
		f.SortDir = "asc"
	}
	if raw := q.Get("is_active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			f.IsActive = &active
		}
	}
	if category := q.Get("category"); category != "" {
		f.Category = &category
	}
	if supplierID := q.Get("supplier_id"); supplierID != "" {
		f.SupplierID = &supplierID
	}
	return f
}

// Slice applies pagination bounds to a list length and returns the index
// range plus the computed metadata.
func (f ListFilters) Slice(total int) (int, int, Pagination) {
	p := NewPagination(f.Page, f.Limit, total)
	start := (p.Page - 1) * p.PerPage
	if start > total {
		start = total
	}
	end := start + p.PerPage
	if end > total {
		end = total
	}
	return start, end, p
}
