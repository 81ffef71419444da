// internal/app/features/notificationsettings/routes.go
package notificationsettings

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the settings routes on r (the /api router).
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users/{userID}/notification-settings", h.Get)
	r.Put("/users/{userID}/notification-settings", h.Update)
}
