// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	errorsfeature "github.com/dalemusser/notifyhub/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/notifyhub/internal/app/features/events"
	healthfeature "github.com/dalemusser/notifyhub/internal/app/features/health"
	settingsfeature "github.com/dalemusser/notifyhub/internal/app/features/notificationsettings"
	subscriptionsfeature "github.com/dalemusser/notifyhub/internal/app/features/subscriptions"
	unsubscribefeature "github.com/dalemusser/notifyhub/internal/app/features/unsubscribe"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. It mounts the JSON API, the unsubscribe link
// target, and the health and metrics endpoints.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	mu.Lock()
	s := current
	mu.Unlock()
	if s == nil {
		return nil, errNotStarted
	}
	return newRouter(s, appCfg, deps, logger), nil
}

func newRouter(s *services, appCfg AppConfig, deps DBDeps, logger *zap.Logger) chi.Router {
	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.NotifyHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", promhttp.Handler())

	eventsHandler := eventsfeature.NewHandler(s.notifier, errLog, logger)
	settingsHandler := settingsfeature.NewHandler(s.stores, s.notifier, errLog, logger)
	subscriptionsHandler := subscriptionsfeature.NewHandler(s.stores, errLog, logger)

	r.Route("/api", func(api chi.Router) {
		api.Mount("/events", eventsfeature.Routes(eventsHandler))
		settingsHandler.MountRoutes(api)
		subscriptionsHandler.MountRoutes(api)
	})

	unsubscribeHandler := unsubscribefeature.NewHandler(s.codec, s.stores, appCfg.SiteName, errLog, logger)
	r.Mount("/unsubscribe", unsubscribefeature.Routes(unsubscribeHandler, s.limiter, logger))

	return r
}
