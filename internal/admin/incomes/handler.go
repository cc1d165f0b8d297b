package incomes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/stockroom-wms/stockroom/internal/admin/formweb"
	"github.com/stockroom-wms/stockroom/internal/admin/suppliers"
	"github.com/stockroom-wms/stockroom/internal/backend"
	"github.com/stockroom-wms/stockroom/internal/catalog"
	"github.com/stockroom-wms/stockroom/internal/forms"
	"github.com/stockroom-wms/stockroom/internal/observability"
	"github.com/stockroom-wms/stockroom/internal/platform/httpx"
	"github.com/stockroom-wms/stockroom/internal/shared"
)

// RefreshFunc requests an out-of-band catalog refresh, e.g. enqueueing a
// background job after a nested create changed the supplier collection.
type RefreshFunc func(ctx context.Context) error

// Handler serves the income admin screen: the proxied listing, the goods
// receipt form with its line-item table, and the nested supplier-create flow.
type Handler struct {
	logger         *slog.Logger
	resource       *backend.Resource[Income]
	catalog        *catalog.Service
	controller     *formweb.Controller[Income]
	refreshCatalog RefreshFunc
}

// NewHandler builds the income handler.
func NewHandler(
	logger *slog.Logger,
	resource *backend.Resource[Income],
	supplierRes *backend.Resource[suppliers.Supplier],
	catalogSvc *catalog.Service,
	registry *forms.Registry,
	audit *shared.AuditLogger,
	guard *shared.SubmitGuard,
	metrics *observability.Metrics,
	refreshCatalog RefreshFunc,
	taxRate decimal.Decimal,
) *Handler {
	h := &Handler{logger: logger, resource: resource, catalog: catalogSvc, refreshCatalog: refreshCatalog}

	open := func(ctx context.Context, recordID string) (forms.Instance, error) {
		snap, err := catalogSvc.Load(ctx)
		if err != nil {
			// A stale snapshot still lets the form open; the session notice is
			// added by the middleware-facing caller. Only an empty snapshot
			// with no fallback fails hard.
			if len(snap.Products) == 0 && len(snap.Suppliers) == 0 {
				return nil, err
			}
			logger.Warn("income form opened on stale catalog", slog.Any("error", err))
		}
		deps := FormDeps{
			Resource:  resource,
			Suppliers: supplierRes,
			Guard:     guard,
			Catalog:   snap,
			TaxRate:   taxRate,
		}
		if recordID == "" {
			return NewFormInstance(deps, nil), nil
		}
		existing, err := resource.Find(ctx, recordID)
		if err != nil {
			return nil, err
		}
		return NewFormInstance(deps, &existing), nil
	}

	h.controller = formweb.NewController(formweb.Config[Income]{
		Logger:   logger,
		Entity:   "income",
		Registry: registry,
		Audit:    audit,
		Open:     open,
		RecordID: func(i Income) string { return i.ID },
		Metrics:  metrics,
		Resolve: func(instance forms.Instance) *forms.Form[Income] {
			wrapped, ok := instance.(*FormInstance)
			if !ok {
				return nil
			}
			return wrapped.Form
		},
	})
	return h
}

type listResponse struct {
	Data       []Income          `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

// List proxies the income collection with admin-side filtering.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r)

	all, err := h.resource.List(r.Context())
	if err != nil {
		h.logger.Error("list incomes", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not load incomes")
		return
	}

	matched := make([]Income, 0, len(all))
	for _, in := range all {
		if filters.Search != "" {
			needle := strings.ToLower(filters.Search)
			if !strings.Contains(strings.ToLower(in.ID), needle) &&
				!strings.Contains(strings.ToLower(in.Note), needle) {
				continue
			}
		}
		if filters.SupplierID != nil && in.SupplierID != *filters.SupplierID {
			continue
		}
		if filters.IsActive != nil && in.Active != *filters.IsActive {
			continue
		}
		matched = append(matched, in)
	}

	sortIncomes(matched, filters.SortBy, filters.SortDir)

	start, end, pagination := filters.Slice(len(matched))
	httpx.JSON(w, http.StatusOK, listResponse{Data: matched[start:end], Pagination: pagination})
}

func sortIncomes(list []Income, by, dir string) {
	less := func(a, b Income) bool { return a.Date < b.Date }
	switch by {
	case "id":
		less = func(a, b Income) bool { return a.ID < b.ID }
	case "total":
		less = func(a, b Income) bool { return a.Total < b.Total }
	}
	sort.SliceStable(list, func(i, j int) bool {
		if dir == "desc" {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}

// Show returns a single income.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	income, err := h.resource.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("find income", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not load income")
		return
	}
	httpx.JSON(w, http.StatusOK, income)
}

// Delete soft-deletes an income.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.resource.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete income", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not delete income")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) instance(w http.ResponseWriter, r *http.Request) *FormInstance {
	instance := h.controller.Instance(w, r)
	if instance == nil {
		return nil
	}
	wrapped, ok := instance.(*FormInstance)
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return nil
	}
	return wrapped
}

type itemsResponse struct {
	Rows      []forms.SelectionRow `json:"rows"`
	Suppliers []suppliers.Supplier `json:"suppliers"`
	Draft     Income               `json:"draft"`
}

// Items returns the selection-table rows alongside the current draft.
func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	instance := h.instance(w, r)
	if instance == nil {
		return
	}
	httpx.JSON(w, http.StatusOK, itemsResponse{
		Rows:      instance.Table.Rows(),
		Suppliers: instance.Suppliers.Items(),
		Draft:     instance.Draft(),
	})
}

type replaceItemsRequest struct {
	Rows []forms.SelectionRow `json:"rows"`
}

// ReplaceItems swaps the selection-table state; the derived totals in the
// returned draft already reflect the change.
func (h *Handler) ReplaceItems(w http.ResponseWriter, r *http.Request) {
	instance := h.instance(w, r)
	if instance == nil {
		return
	}

	var req replaceItemsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}

	if err := instance.ReplaceRows(req.Rows); err != nil {
		if errors.Is(err, forms.ErrUnknownProduct) {
			httpx.Problem(w, http.StatusBadRequest, "Unknown Product", "a row referenced a product outside the catalog")
			return
		}
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, itemsResponse{
		Rows:      instance.Table.Rows(),
		Suppliers: instance.Suppliers.Items(),
		Draft:     instance.Draft(),
	})
}

type nestedSupplierRequest struct {
	Record suppliers.Supplier `json:"record"`
}

type nestedSupplierResponse struct {
	Supplier  suppliers.Supplier   `json:"supplier"`
	Suppliers []suppliers.Supplier `json:"suppliers"`
	Draft     Income               `json:"draft"`
}

// CreateSupplier runs the nested supplier-create flow. Success appends the
// new supplier to this form's cache and pre-selects it on the draft; failure
// leaves the parent draft exactly as it was.
func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	instance := h.instance(w, r)
	if instance == nil {
		return
	}

	var req nestedSupplierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}

	errs, err := instance.CreateSupplier(r.Context(), req.Record)
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateSubmission) {
			httpx.RespondError(w, httpx.ErrDuplicate)
			return
		}
		httpx.Problem(w, http.StatusBadGateway, "Submission Failed", "the supplier was not saved, try again")
		return
	}
	if len(errs) > 0 {
		httpx.FieldProblem(w, errs)
		return
	}

	// The shared snapshot is now behind this form's cache; a background
	// refresh brings other sessions up to date.
	if h.refreshCatalog != nil {
		if err := h.refreshCatalog(r.Context()); err != nil {
			h.logger.Warn("catalog refresh request", slog.Any("error", err))
		}
	}

	draft := instance.Draft()
	created, _ := instance.Suppliers.Resolve(draft.SupplierID)
	httpx.JSON(w, http.StatusCreated, nestedSupplierResponse{
		Supplier:  created,
		Suppliers: instance.Suppliers.Items(),
		Draft:     draft,
	})
}

// MountRoutes attaches the income admin endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
	r.Delete("/{id}", h.Delete)
	h.controller.MountRoutes(r)
	r.Get("/forms/{fid}/items", h.Items)
	r.Put("/forms/{fid}/items", h.ReplaceItems)
	r.Post("/forms/{fid}/suppliers", h.CreateSupplier)
}
