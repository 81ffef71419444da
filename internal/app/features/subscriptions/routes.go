// internal/app/features/subscriptions/routes.go
package subscriptions

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Put("/subscriptions", h.Set)
}
