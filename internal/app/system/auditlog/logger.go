// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/nexera-events/symphony/internal/app/store/audit"
	"github.com/nexera-events/symphony/internal/app/system/identity"
	"github.com/nexera-events/symphony/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination settings for a category.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"  // MongoDB only
	DestLog = "log" // zap only
	DestOff = "off"
)

// ValidDestination reports whether d is one of the Dest constants.
func ValidDestination(d string) bool {
	switch d {
	case DestAll, DestDB, DestLog, DestOff:
		return true
	}
	return false
}

// Config selects where each category of event is written.
type Config struct {
	// Auth covers login, logout, and login failures.
	Auth string
	// Admin covers create/update/delete of users, teams, tasks, events,
	// sponsors, and logistics items.
	Admin string
	// Security covers permission denials. Empty means DestAll.
	Security string
}

// Logger records audit events to MongoDB (via audit.Store) and to zap.
// A nil *Logger is valid and drops every event.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) destination(category string) string {
	switch category {
	case audit.CategoryAuth:
		return l.config.Auth
	case audit.CategoryAdmin:
		return l.config.Admin
	case audit.CategorySecurity:
		if l.config.Security == "" {
			return DestAll
		}
		return l.config.Security
	default:
		return DestAll
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.TeamID != nil {
		fields = append(fields, zap.String("team_id", event.TeamID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the category's destination setting.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	dest := l.destination(event.Category)
	if dest == DestOff || dest == "" {
		return
	}
	if dest == DestAll || dest == DestLog {
		l.logToZap(event)
	}
	if (dest == DestAll || dest == DestDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func base(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

func teamRef(id identity.Identity) *primitive.ObjectID {
	if !id.HasTeam() {
		return nil
	}
	t := id.TeamID
	return &t
}

// --- Authentication ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, teamID *primitive.ObjectID, authMethod, email string) {
	ev := base(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	ev.UserID = &userID
	ev.TeamID = teamID
	ev.Details = map[string]string{"auth_method": authMethod, "email": email}
	l.Log(ctx, ev)
}

// LoginFailedUserNotFound logs a sign-in for an email with no account.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	ev := base(r, audit.CategoryAuth, audit.EventLoginFailedUserNotFound, false)
	ev.FailureReason = "user not found"
	ev.Details = map[string]string{"attempted_email": attemptedEmail}
	l.Log(ctx, ev)
}

// LoginFailedWrongPassword logs a sign-in with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	ev := base(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword, false)
	ev.UserID = &userID
	ev.FailureReason = "wrong password"
	ev.Details = map[string]string{"email": email}
	l.Log(ctx, ev)
}

// LoginFailedUserDisabled logs a sign-in to a disabled account.
func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	ev := base(r, audit.CategoryAuth, audit.EventLoginFailedUserDisabled, false)
	ev.UserID = &userID
	ev.FailureReason = "user disabled"
	ev.Details = map[string]string{"email": email}
	l.Log(ctx, ev)
}

// LoginFailedRateLimit logs a sign-in rejected by the login limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	ev := base(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, false)
	ev.FailureReason = "rate limited"
	ev.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, ev)
}

// Logout logs a sign-out. A zero userID (no session) is still recorded.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	ev := base(r, audit.CategoryAuth, audit.EventLogout, true)
	if !userID.IsZero() {
		ev.UserID = &userID
	}
	l.Log(ctx, ev)
}

// --- Mutations ---

// Action logs a successful mutation performed by actor on the record
// subjectID. details may be nil.
func (l *Logger) Action(ctx context.Context, r *http.Request, actor identity.Identity, eventType string, subjectID primitive.ObjectID, details map[string]string) {
	ev := base(r, audit.CategoryAdmin, eventType, true)
	actorID := actor.ID
	ev.ActorID = &actorID
	ev.TeamID = teamRef(actor)
	if details == nil {
		details = map[string]string{}
	}
	details["subject_id"] = subjectID.Hex()
	details["actor_role"] = actor.Role.String()
	ev.Details = details
	l.Log(ctx, ev)
}

// UserCreated logs an admin creating an account.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actor identity.Identity, userID primitive.ObjectID, role string) {
	l.Action(ctx, r, actor, audit.EventUserCreated, userID, map[string]string{"role": role})
}

// UserUpdated logs an admin changing an account. fields lists what changed.
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actor identity.Identity, userID primitive.ObjectID, fields string) {
	l.Action(ctx, r, actor, audit.EventUserUpdated, userID, map[string]string{"fields_changed": fields})
}

// --- Security ---

// PermissionDenied logs a request the access policy refused. action names
// the attempted operation ("task.edit"); subject is the record id or "".
func (l *Logger) PermissionDenied(ctx context.Context, r *http.Request, actor identity.Identity, action, subject string) {
	ev := base(r, audit.CategorySecurity, audit.EventPermissionDenied, false)
	if actor.Present() {
		actorID := actor.ID
		ev.ActorID = &actorID
		ev.TeamID = teamRef(actor)
	}
	ev.FailureReason = "permission denied"
	ev.Details = map[string]string{
		"action":     action,
		"actor_role": actor.Role.String(),
		"method":     r.Method,
		"path":       r.URL.Path,
	}
	if subject != "" {
		ev.Details["subject_id"] = subject
	}
	l.Log(ctx, ev)
}
