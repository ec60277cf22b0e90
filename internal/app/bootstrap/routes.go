// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	analyticsfeature "github.com/nexera-events/symphony/internal/app/features/analytics"
	auditlogfeature "github.com/nexera-events/symphony/internal/app/features/auditlog"
	authgooglefeature "github.com/nexera-events/symphony/internal/app/features/authgoogle"
	dashboardfeature "github.com/nexera-events/symphony/internal/app/features/dashboard"
	errorsfeature "github.com/nexera-events/symphony/internal/app/features/errors"
	eventsfeature "github.com/nexera-events/symphony/internal/app/features/events"
	healthfeature "github.com/nexera-events/symphony/internal/app/features/health"
	livefeature "github.com/nexera-events/symphony/internal/app/features/live"
	logisticsfeature "github.com/nexera-events/symphony/internal/app/features/logistics"
	loginfeature "github.com/nexera-events/symphony/internal/app/features/login"
	logoutfeature "github.com/nexera-events/symphony/internal/app/features/logout"
	sponsorsfeature "github.com/nexera-events/symphony/internal/app/features/sponsors"
	tasksfeature "github.com/nexera-events/symphony/internal/app/features/tasks"
	teamsfeature "github.com/nexera-events/symphony/internal/app/features/teams"
	userinfofeature "github.com/nexera-events/symphony/internal/app/features/userinfo"
	usersfeature "github.com/nexera-events/symphony/internal/app/features/users"
	"github.com/nexera-events/symphony/internal/app/store/audit"
	"github.com/nexera-events/symphony/internal/app/store/oauthstate"
	sessionstore "github.com/nexera-events/symphony/internal/app/store/sessions"
	userstore "github.com/nexera-events/symphony/internal/app/store/users"
	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/auth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It builds the session manager and audit
// logger, then mounts one chi subrouter per feature.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	hub := deps.storeHub(appCfg)

	// LoadSessionUser checks the session record and re-reads the user on
	// every request, so logout, role changes, and disabled accounts take
	// effect immediately on every instance.
	fetcher := userstore.NewFetcher(db, logger)
	sessionMgr.SetUserFetcher(fetcher)
	sessionMgr.SetSessionTracker(sessionstore.New(db, hub))
	sessionMgr.SetAuditLogger(auditLog)

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(sessionMgr.LoadSessionUser)

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Hub, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, auditLog, deps.loginLimiter(), appCfg.GoogleEnabled(), logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	if appCfg.GoogleEnabled() {
		googleHandler := authgooglefeature.NewHandler(db, sessionMgr, auditLog, oauthstate.New(db),
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	userInfoHandler := userinfofeature.NewHandler()
	r.Mount("/me", userinfofeature.Routes(userInfoHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	dashboardHandler := dashboardfeature.NewHandler(db, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	tasksHandler := tasksfeature.NewHandler(db, hub, errLog, auditLog, logger)
	r.Mount("/tasks", tasksfeature.Routes(tasksHandler, sessionMgr))

	teamsHandler := teamsfeature.NewHandler(db, hub, errLog, auditLog, logger)
	r.Mount("/teams", teamsfeature.Routes(teamsHandler, sessionMgr))

	eventsHandler := eventsfeature.NewHandler(db, hub, errLog, auditLog, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler, sessionMgr))

	sponsorsHandler := sponsorsfeature.NewHandler(db, hub, errLog, auditLog, logger)
	r.Mount("/sponsors", sponsorsfeature.Routes(sponsorsHandler, sessionMgr))

	logisticsHandler := logisticsfeature.NewHandler(db, hub, errLog, auditLog, logger)
	r.Mount("/logistics", logisticsfeature.Routes(logisticsHandler, sessionMgr))

	analyticsHandler := analyticsfeature.NewHandler(db, errLog, logger)
	r.Mount("/analytics", analyticsfeature.Routes(analyticsHandler, sessionMgr))

	usersHandler := usersfeature.NewHandler(db, hub, errLog, auditLog, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(db, errLog, auditLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	// Realtime push
	liveHandler := livefeature.NewHandler(db, deps.Hub, fetcher, sessionMgr, appCfg.WSAllowedOrigins, logger)
	r.Mount("/live", livefeature.Routes(liveHandler, sessionMgr))

	return r, nil
}
