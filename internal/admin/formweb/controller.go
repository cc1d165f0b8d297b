// Package formweb exposes the entity-form workflow over HTTP. Every admin
// screen (products, suppliers, incomes, outcomes) mounts the same five
// form-session endpoints through a Controller; only the entity type and the
// open/submit wiring differ.
package formweb

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stockroom-wms/stockroom/internal/backend"
	"github.com/stockroom-wms/stockroom/internal/forms"
	"github.com/stockroom-wms/stockroom/internal/observability"
	"github.com/stockroom-wms/stockroom/internal/platform/httpx"
	"github.com/stockroom-wms/stockroom/internal/shared"
)

// OpenFunc builds a form instance, optionally editing an existing record. It
// may return any registry instance; Resolve extracts the inner form.
type OpenFunc[T any] func(ctx context.Context, recordID string) (forms.Instance, error)

// Config wires a Controller to one entity type.
type Config[T any] struct {
	Logger   *slog.Logger
	Entity   string
	Registry *forms.Registry
	Audit    *shared.AuditLogger
	Open     OpenFunc[T]
	RecordID func(T) string
	Metrics  *observability.Metrics
	// Resolve extracts the form from a registry instance. Defaults to a plain
	// type assertion; entities that register a wrapper (e.g. a form bundled
	// with its selection table) supply their own.
	Resolve func(forms.Instance) *forms.Form[T]
}

// Controller mounts the form-session endpoints for one entity type.
type Controller[T any] struct {
	cfg Config[T]
}

// NewController builds a Controller.
func NewController[T any](cfg Config[T]) *Controller[T] {
	if cfg.Resolve == nil {
		cfg.Resolve = func(instance forms.Instance) *forms.Form[T] {
			form, _ := instance.(*forms.Form[T])
			return form
		}
	}
	return &Controller[T]{cfg: cfg}
}

// View is the JSON shape of one form instance.
type View[T any] struct {
	ID      string         `json:"id"`
	State   forms.State    `json:"state"`
	Draft   T              `json:"draft"`
	Errors  forms.Errors   `json:"errors,omitempty"`
	Notices []forms.Notice `json:"notices,omitempty"`
}

// NewView renders a form for responses.
func NewView[T any](form *forms.Form[T], errs forms.Errors) View[T] {
	return View[T]{
		ID:      form.ID().String(),
		State:   form.State(),
		Draft:   form.Draft(),
		Errors:  errs,
		Notices: form.Notices(),
	}
}

// MountRoutes attaches the form-session endpoints.
func (c *Controller[T]) MountRoutes(r chi.Router) {
	r.Post("/forms", c.Open)
	r.Get("/forms/{fid}", c.Show)
	r.Put("/forms/{fid}", c.Edit)
	r.Post("/forms/{fid}/submit", c.Submit)
	r.Post("/forms/{fid}/cancel", c.Cancel)
}

type openRequest struct {
	RecordID string `json:"record_id,omitempty"`
}

// Open starts a new form session.
func (c *Controller[T]) Open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
			return
		}
	}

	instance, err := c.cfg.Open(r.Context(), req.RecordID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		c.cfg.Logger.Error("open form", slog.String("entity", c.cfg.Entity), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unavailable", "could not load reference data")
		return
	}

	c.cfg.Registry.Add(instance)
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.MarkForm(instance.ID().String())
	}
	httpx.JSON(w, http.StatusCreated, NewView(c.cfg.Resolve(instance), nil))
}

// Show returns the current form state.
func (c *Controller[T]) Show(w http.ResponseWriter, r *http.Request) {
	form := c.Lookup(w, r)
	if form == nil {
		return
	}
	httpx.JSON(w, http.StatusOK, NewView(form, nil))
}

type editRequest[T any] struct {
	Record T      `json:"record"`
	Blur   string `json:"blur,omitempty"`
}

// Edit replaces the draft with the submitted record and reports blur-time
// field errors for the named field.
func (c *Controller[T]) Edit(w http.ResponseWriter, r *http.Request) {
	form := c.Lookup(w, r)
	if form == nil {
		return
	}

	var req editRequest[T]
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}

	if err := form.Apply(func(draft *T) { *draft = req.Record }); err != nil {
		c.respondFormError(w, err)
		return
	}

	var errs forms.Errors
	if req.Blur != "" {
		errs = form.Blur(req.Blur)
	}
	httpx.JSON(w, http.StatusOK, NewView(form, errs))
}

// Submit runs the submit transition and records the outcome in the audit
// trail.
func (c *Controller[T]) Submit(w http.ResponseWriter, r *http.Request) {
	form := c.Lookup(w, r)
	if form == nil {
		return
	}

	record := form.Draft()
	errs, err := form.Submit(r.Context())
	if err != nil {
		c.auditOutcome(r, record, "failure")
		c.respondFormError(w, err)
		return
	}
	if len(errs) > 0 {
		httpx.FieldProblem(w, errs)
		return
	}

	c.auditOutcome(r, record, "success")
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.ForgetForm(form.ID().String())
	}
	httpx.JSON(w, http.StatusOK, NewView(form, nil))
}

type cancelRequest struct {
	Confirm bool `json:"confirm"`
}

// Cancel discards the draft after confirmation.
func (c *Controller[T]) Cancel(w http.ResponseWriter, r *http.Request) {
	form := c.Lookup(w, r)
	if form == nil {
		return
	}

	var req cancelRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
			return
		}
	}

	if err := form.Cancel(req.Confirm); err != nil {
		c.respondFormError(w, err)
		return
	}

	c.cfg.Registry.Drop(form.ID())
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.ForgetForm(form.ID().String())
	}
	w.WriteHeader(http.StatusNoContent)
}

// Instance resolves the {fid} route parameter to a live registry instance
// owned by the caller's session. It writes the error response itself and
// returns nil when the request is already handled.
func (c *Controller[T]) Instance(w http.ResponseWriter, r *http.Request) forms.Instance {
	id, err := uuid.Parse(chi.URLParam(r, "fid"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid form id")
		return nil
	}

	if sess := shared.SessionFromContext(r.Context()); sess != nil && !sess.OwnsForm(id.String()) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return nil
	}

	instance := c.cfg.Registry.Get(id)
	if instance == nil {
		httpx.RespondError(w, httpx.ErrFormClosed)
		return nil
	}
	return instance
}

// Lookup resolves the {fid} route parameter to the live form itself.
func (c *Controller[T]) Lookup(w http.ResponseWriter, r *http.Request) *forms.Form[T] {
	instance := c.Instance(w, r)
	if instance == nil {
		return nil
	}
	form := c.cfg.Resolve(instance)
	if form == nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return nil
	}
	return form
}

func (c *Controller[T]) respondFormError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, forms.ErrConfirmRequired):
		httpx.RespondError(w, httpx.ErrConfirmRequired)
	case errors.Is(err, forms.ErrSubmitInFlight):
		httpx.Problem(w, http.StatusConflict, "Submission In Flight", "a submission is already running")
	case errors.Is(err, forms.ErrFormClosed), errors.Is(err, forms.ErrStaleGeneration):
		httpx.RespondError(w, httpx.ErrFormClosed)
	case errors.Is(err, shared.ErrDuplicateSubmission):
		httpx.RespondError(w, httpx.ErrDuplicate)
	default:
		httpx.Problem(w, http.StatusBadGateway, "Submission Failed", "the record was not saved, try again")
	}
}

func (c *Controller[T]) auditOutcome(r *http.Request, record T, outcome string) {
	c.cfg.Metrics.RecordSubmission(c.cfg.Entity, outcome)
	if c.cfg.Audit == nil {
		return
	}
	sessionID := ""
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sessionID = sess.ID
	}
	entry := shared.SubmissionLog{
		SessionID: sessionID,
		Entity:    c.cfg.Entity,
		RecordID:  c.cfg.RecordID(record),
		Outcome:   outcome,
	}
	if err := c.cfg.Audit.Record(r.Context(), entry); err != nil {
		c.cfg.Logger.Warn("audit submission", slog.String("entity", c.cfg.Entity), slog.Any("error", err))
	}
}
