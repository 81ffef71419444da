// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	metricsstore "github.com/dalemusser/notifyhub/internal/app/store/metrics"
	"github.com/dalemusser/notifyhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It builds
// the resolution engine and starts the delivery workers and background jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		t := timeouts.Current()
		logger.Info("timeouts overridden from environment",
			zap.Int("count", n),
			zap.Duration("ping", t.Ping),
			zap.Duration("short", t.Short),
			zap.Duration("medium", t.Medium),
			zap.Duration("long", t.Long),
			zap.Duration("delivery", t.Delivery))
	}

	collector := metricsstore.NewCollector(deps.NotifyHubMongoDatabase, logger.Named("metrics"))
	if err := prometheus.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return err
		}
	}

	s := newServices(appCfg, deps, logger)
	s.start()

	mu.Lock()
	current = s
	mu.Unlock()
	return nil
}
