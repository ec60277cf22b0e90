// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/nexera-events/symphony/internal/app/store/audit"
	"github.com/nexera-events/symphony/internal/app/store/oauthstate"
	sessionstore "github.com/nexera-events/symphony/internal/app/store/sessions"
	userstore "github.com/nexera-events/symphony/internal/app/store/users"
	"github.com/nexera-events/symphony/internal/app/system/identity"
	"github.com/nexera-events/symphony/internal/app/system/jobs"
	"github.com/nexera-events/symphony/internal/app/system/ratelimit"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/app/system/workers"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.uber.org/zap"
)

// watchedCollections are relayed from the change stream to live clients.
var watchedCollections = []string{"tasks", "users", "teams", "events", "sponsors", "logistics", "sessions"}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		cur := timeouts.Current()
		logger.Info("timeouts configured from env",
			zap.Duration("short", cur.Short),
			zap.Duration("medium", cur.Medium),
			zap.Duration("long", cur.Long))
	}

	if appCfg.SeedAdminEmail != "" {
		seedCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), logger, "seed admin")
		defer cancel()
		users := userstore.New(deps.MongoDatabase, nil)
		if _, err := ensureSeedAdmin(seedCtx, users, appCfg.SeedAdminEmail, appCfg.SeedAdminPassword, logger); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	if deps.svc == nil {
		return nil
	}
	deps.svc.limiter = ratelimit.NewLoginLimiter()

	if appCfg.RealtimeChangeStreams {
		w := realtime.NewWatcher(deps.MongoDatabase, deps.Hub, logger, watchedCollections...)
		// The watcher outlives Startup's ctx; Shutdown stops it.
		w.Start(context.Background())
		deps.svc.watcher = w
		logger.Info("realtime change streams enabled", zap.Strings("collections", watchedCollections))
	}

	runner := workers.NewRunner(logger,
		jobs.OAuthStateCleanupJob(oauthstate.New(deps.MongoDatabase), logger),
		jobs.AuditRetentionJob(audit.New(deps.MongoDatabase), logger, appCfg.AuditRetention),
		jobs.SessionCleanupJob(sessionstore.New(deps.MongoDatabase, deps.storeHub(appCfg)), logger, appCfg.SessionMaxAge),
	)
	runner.Start()
	deps.svc.runner = runner

	return nil
}

// ensureSeedAdmin creates an admin with email when the users collection is
// empty. An empty password makes a Google sign-in account. It reports
// whether a user was created.
func ensureSeedAdmin(ctx context.Context, users *userstore.Store, email, password string, logger *zap.Logger) (bool, error) {
	n, err := users.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		logger.Debug("users exist; skipping admin seed", zap.Int64("users", n))
		return false, nil
	}

	method := models.AuthMethodPassword
	if password == "" {
		method = models.AuthMethodGoogle
	}
	u, err := users.Create(ctx, models.User{
		FullName:   "Administrator",
		Email:      email,
		Role:       identity.RoleAdmin.String(),
		AuthMethod: method,
	}, password)
	if err != nil {
		return false, err
	}
	logger.Info("seeded admin user",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email", u.Email),
		zap.String("auth_method", u.AuthMethod))
	return true, nil
}
