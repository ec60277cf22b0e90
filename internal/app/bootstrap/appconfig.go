// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS, body limits); this
// struct is everything specific to the dashboard backend.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: symphony-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Audit logging: "all", "db", "log", or "off"
	AuditLogAuth   string
	AuditLogAdmin  string
	AuditRetention time.Duration // 0 keeps audit events forever

	// Google OAuth (both empty disables Google sign-in)
	GoogleClientID     string
	GoogleClientSecret string
	BaseURL            string // e.g., "https://symphony.example.com"; OAuth callbacks are built from it

	// Realtime
	RealtimeChangeStreams bool     // relay MongoDB change streams; needs a replica set
	WSAllowedOrigins      []string // extra websocket origin patterns

	// First-run admin. Only used while the users collection is empty.
	SeedAdminEmail    string
	SeedAdminPassword string
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c AppConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
