package suppliers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom-wms/stockroom/internal/admin/formweb"
	"github.com/stockroom-wms/stockroom/internal/backend"
	"github.com/stockroom-wms/stockroom/internal/forms"
	"github.com/stockroom-wms/stockroom/internal/observability"
	"github.com/stockroom-wms/stockroom/internal/platform/httpx"
	"github.com/stockroom-wms/stockroom/internal/shared"
)

// Handler serves the supplier admin screen.
type Handler struct {
	logger     *slog.Logger
	resource   *backend.Resource[Supplier]
	controller *formweb.Controller[Supplier]
}

// NewHandler builds the supplier handler.
func NewHandler(
	logger *slog.Logger,
	resource *backend.Resource[Supplier],
	registry *forms.Registry,
	audit *shared.AuditLogger,
	guard *shared.SubmitGuard,
	metrics *observability.Metrics,
) *Handler {
	h := &Handler{logger: logger, resource: resource}

	deps := FormDeps{Resource: resource, Guard: guard}
	open := func(ctx context.Context, recordID string) (forms.Instance, error) {
		if recordID == "" {
			return NewForm(deps, nil, nil), nil
		}
		existing, err := resource.Find(ctx, recordID)
		if err != nil {
			return nil, err
		}
		return NewForm(deps, &existing, nil), nil
	}
	h.controller = formweb.NewController(formweb.Config[Supplier]{
		Logger:   logger,
		Entity:   "supplier",
		Registry: registry,
		Audit:    audit,
		Open:     open,
		RecordID: func(s Supplier) string { return s.ID },
		Metrics:  metrics,
	})
	return h
}

type listResponse struct {
	Data       []Supplier        `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

// List proxies the supplier collection with admin-side filtering.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r)

	all, err := h.resource.List(r.Context())
	if err != nil {
		h.logger.Error("list suppliers", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not load suppliers")
		return
	}

	matched := make([]Supplier, 0, len(all))
	for _, s := range all {
		if filters.Search != "" {
			needle := strings.ToLower(filters.Search)
			if !strings.Contains(strings.ToLower(s.Name), needle) &&
				!strings.Contains(strings.ToLower(s.ID), needle) &&
				!strings.Contains(strings.ToLower(s.Email), needle) {
				continue
			}
		}
		if filters.IsActive != nil && s.Active != *filters.IsActive {
			continue
		}
		matched = append(matched, s)
	}

	sortSuppliers(matched, filters.SortBy, filters.SortDir)

	start, end, pagination := filters.Slice(len(matched))
	httpx.JSON(w, http.StatusOK, listResponse{Data: matched[start:end], Pagination: pagination})
}

func sortSuppliers(list []Supplier, by, dir string) {
	less := func(a, b Supplier) bool { return a.Name < b.Name }
	if by == "id" {
		less = func(a, b Supplier) bool { return a.ID < b.ID }
	}
	sort.SliceStable(list, func(i, j int) bool {
		if dir == "desc" {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}

// Show returns a single supplier.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	supplier, err := h.resource.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("find supplier", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not load supplier")
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

// Delete soft-deletes a supplier.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.resource.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete supplier", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not delete supplier")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MountRoutes attaches the supplier admin endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
	r.Delete("/{id}", h.Delete)
	h.controller.MountRoutes(r)
}
