package products

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the product admin endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
	r.Get("/{id}/image", h.Image)
	r.Delete("/{id}", h.Delete)
	h.controller.MountRoutes(r)
}
