// internal/app/features/unsubscribe/routes.go
package unsubscribe

import (
	"github.com/dalemusser/notifyhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes serves the one-click unsubscribe link. Token guessing is throttled
// per client IP by limiter.
func Routes(h *Handler, limiter *ratelimit.Limiter, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(ratelimit.Middleware(limiter, logger))
	r.Get("/{token}", h.Unsubscribe)
	return r
}
