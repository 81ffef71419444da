// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background work, then tears down DB connections.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	mu.Lock()
	s := current
	current = nil
	mu.Unlock()
	if s != nil {
		logger.Info("stopping dispatcher and background jobs")
		s.stop()
	}

	if deps.NotifyHubMongoClient != nil {
		logger.Info("disconnecting NotifyHub MongoDB client")
		if err := deps.NotifyHubMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
