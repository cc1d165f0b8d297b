package outcomes

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
	"github.com/stockroom-wms/stockroom/internal/backend"
	"github.com/stockroom-wms/stockroom/internal/catalog"
	"github.com/stockroom-wms/stockroom/internal/forms"
	"github.com/stockroom-wms/stockroom/internal/observability"
	"github.com/stockroom-wms/stockroom/internal/platform/httpx"
	"github.com/stockroom-wms/stockroom/internal/shared"
)

// Handler serves the outcome admin screen.
type Handler struct {
	logger     *slog.Logger
	resource   *backend.Resource[Outcome]
	controller *formweb.Controller[Outcome]
}

// NewHandler builds the outcome handler.
func NewHandler(
	logger *slog.Logger,
	resource *backend.Resource[Outcome],
	catalogSvc *catalog.Service,
	registry *forms.Registry,
	audit *shared.AuditLogger,
	guard *shared.SubmitGuard,
	metrics *observability.Metrics,
	taxRate decimal.Decimal,
) *Handler {
	h := &Handler{logger: logger, resource: resource}

	open := func(ctx context.Context, recordID string) (forms.Instance, error) {
		snap, err := catalogSvc.Load(ctx)
		if err != nil {
			if len(snap.Products) == 0 {
				return nil, err
			}
			logger.Warn("outcome form opened on stale catalog", slog.Any("error", err))
		}
		deps := FormDeps{Resource: resource, Guard: guard, Catalog: snap, TaxRate: taxRate}
		if recordID == "" {
			return NewFormInstance(deps, nil), nil
		}
		existing, err := resource.Find(ctx, recordID)
		if err != nil {
			return nil, err
		}
		return NewFormInstance(deps, &existing), nil
	}

	h.controller = formweb.NewController(formweb.Config[Outcome]{
		Logger:   logger,
		Entity:   "outcome",
		Registry: registry,
		Audit:    audit,
		Open:     open,
		RecordID: func(o Outcome) string { return o.ID },
		Metrics:  metrics,
		Resolve: func(instance forms.Instance) *forms.Form[Outcome] {
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
	Data       []Outcome         `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

// List proxies the outcome collection with admin-side filtering.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r)

	all, err := h.resource.List(r.Context())
	if err != nil {
		h.logger.Error("list outcomes", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not load outcomes")
		return
	}

	matched := make([]Outcome, 0, len(all))
	for _, out := range all {
		if filters.Search != "" {
			needle := strings.ToLower(filters.Search)
			if !strings.Contains(strings.ToLower(out.ID), needle) &&
				!strings.Contains(strings.ToLower(out.Destination), needle) &&
				!strings.Contains(strings.ToLower(out.Note), needle) {
				continue
			}
		}
		if filters.IsActive != nil && out.Active != *filters.IsActive {
			continue
		}
		matched = append(matched, out)
	}

	sortOutcomes(matched, filters.SortBy, filters.SortDir)

	start, end, pagination := filters.Slice(len(matched))
	httpx.JSON(w, http.StatusOK, listResponse{Data: matched[start:end], Pagination: pagination})
}

func sortOutcomes(list []Outcome, by, dir string) {
	less := func(a, b Outcome) bool { return a.Date < b.Date }
	switch by {
	case "id":
		less = func(a, b Outcome) bool { return a.ID < b.ID }
	case "total":
		less = func(a, b Outcome) bool { return a.Total < b.Total }
	}
	sort.SliceStable(list, func(i, j int) bool {
		if dir == "desc" {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}

// Show returns a single outcome.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.resource.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("find outcome", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not load outcome")
		return
	}
	httpx.JSON(w, http.StatusOK, outcome)
}

// Delete soft-deletes an outcome.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.resource.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete outcome", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not delete outcome")
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
	Rows  []forms.SelectionRow `json:"rows"`
	Draft Outcome              `json:"draft"`
}

// Items returns the selection-table rows alongside the current draft.
func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	instance := h.instance(w, r)
	if instance == nil {
		return
	}
	httpx.JSON(w, http.StatusOK, itemsResponse{Rows: instance.Table.Rows(), Draft: instance.Draft()})
}

type replaceItemsRequest struct {
	Rows []forms.SelectionRow `json:"rows"`
}

// ReplaceItems swaps the selection-table state.
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

	httpx.JSON(w, http.StatusOK, itemsResponse{Rows: instance.Table.Rows(), Draft: instance.Draft()})
}

// MountRoutes attaches the outcome admin endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
	r.Delete("/{id}", h.Delete)
	h.controller.MountRoutes(r)
	r.Get("/forms/{fid}/items", h.Items)
	r.Put("/forms/{fid}/items", h.ReplaceItems)
}
