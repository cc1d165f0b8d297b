package products

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

// Handler serves the product admin screen: the proxied listing plus the
// create/edit form sessions.
type Handler struct {
	logger     *slog.Logger
	resource   *backend.Resource[Product]
	files      *backend.FileStore
	controller *formweb.Controller[Product]
}

// NewHandler builds the product handler.
func NewHandler(
	logger *slog.Logger,
	resource *backend.Resource[Product],
	files *backend.FileStore,
	registry *forms.Registry,
	audit *shared.AuditLogger,
	guard *shared.SubmitGuard,
	metrics *observability.Metrics,
) *Handler {
	h := &Handler{logger: logger, resource: resource, files: files}

	deps := FormDeps{Resource: resource, Guard: guard}
	open := func(ctx context.Context, recordID string) (forms.Instance, error) {
		if recordID == "" {
			return NewForm(deps, nil), nil
		}
		existing, err := resource.Find(ctx, recordID)
		if err != nil {
			return nil, err
		}
		return NewForm(deps, &existing), nil
	}
	h.controller = formweb.NewController(formweb.Config[Product]{
		Logger:   logger,
		Entity:   "product",
		Registry: registry,
		Audit:    audit,
		Open:     open,
		RecordID: func(p Product) string { return p.ID },
		Metrics:  metrics,
	})
	return h
}

type listResponse struct {
	Data       []Product         `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

// List proxies the full catalog and applies search, category and status
// filtering plus sorting and pagination on the admin side.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r)

	all, err := h.resource.List(r.Context())
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not load products")
		return
	}

	matched := make([]Product, 0, len(all))
	for _, p := range all {
		if filters.Search != "" {
			needle := strings.ToLower(filters.Search)
			if !strings.Contains(strings.ToLower(p.Name), needle) &&
				!strings.Contains(strings.ToLower(p.ID), needle) {
				continue
			}
		}
		if filters.Category != nil && p.Category != *filters.Category {
			continue
		}
		if filters.IsActive != nil && p.Active != *filters.IsActive {
			continue
		}
		matched = append(matched, p)
	}

	sortProducts(matched, filters.SortBy, filters.SortDir)

	start, end, pagination := filters.Slice(len(matched))
	httpx.JSON(w, http.StatusOK, listResponse{Data: matched[start:end], Pagination: pagination})
}

func sortProducts(list []Product, by, dir string) {
	less := func(a, b Product) bool { return a.Name < b.Name }
	switch by {
	case "id":
		less = func(a, b Product) bool { return a.ID < b.ID }
	case "unit_price":
		less = func(a, b Product) bool { return a.UnitPrice < b.UnitPrice }
	case "category":
		less = func(a, b Product) bool { return a.Category < b.Category }
	}
	sort.SliceStable(list, func(i, j int) bool {
		if dir == "desc" {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}

// Show returns a single product.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	product, err := h.resource.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("find product", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not load product")
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Image streams the product image from the file store.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	product, err := h.resource.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not load product")
		return
	}
	if product.ImageFileID == "" {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}

	payload, contentType, err := h.files.Download(r.Context(), product.ImageFileID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("download product image", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not load image")
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// Delete soft-deletes a product; the collaborator flips its active flag.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.resource.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete product", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
