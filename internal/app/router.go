package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stockroom-wms/stockroom/internal/admin/incomes"
	"github.com/stockroom-wms/stockroom/internal/admin/outcomes"
	"github.com/stockroom-wms/stockroom/internal/admin/products"
	"github.com/stockroom-wms/stockroom/internal/admin/suppliers"
	"github.com/stockroom-wms/stockroom/internal/observability"
	"github.com/stockroom-wms/stockroom/internal/platform/httpx"
	"github.com/stockroom-wms/stockroom/internal/shared"
	"github.com/stockroom-wms/stockroom/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	ProductHandler  *products.Handler
	SupplierHandler *suppliers.Handler
	IncomeHandler   *incomes.Handler
	OutcomeHandler  *outcomes.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with Stockroom defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Bootstraps a browser session: issues the CSRF token every mutating call
	// must echo in X-CSRF-Token, and returns any pending transient notices.
	r.Get("/session", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		token, err := params.CSRFManager.EnsureToken(r.Context(), sess)
		if err != nil {
			params.Logger.Error("issue csrf token", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"csrf_token": token,
			"open_forms": sess.FormIDs(),
			"notices":    sess.Notices(),
		})
	})

	r.Route("/products", params.ProductHandler.MountRoutes)
	r.Route("/suppliers", params.SupplierHandler.MountRoutes)
	r.Route("/incomes", params.IncomeHandler.MountRoutes)
	r.Route("/outcomes", params.OutcomeHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
