// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background work, closes live connections, and
// disconnects MongoDB.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if s := deps.svc; s != nil {
		if s.watcher != nil {
			s.watcher.Stop()
		}
		if s.runner != nil {
			s.runner.Stop()
		}
		if s.limiter != nil {
			s.limiter.Stop()
		}
	}
	// Closing the hub ends every live subscription; clients reconnect elsewhere.
	deps.Hub.Close()

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
