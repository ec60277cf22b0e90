// Package auth manages the signed session cookie and turns it into the
// request's identity.
//
// The cookie carries the user's id and the id of a server-side session
// record. On every request LoadSessionUser checks that the record is still
// open and asks a UserFetcher for the current user and team, so logout
// revokes every copy of the cookie, role, team, and status changes take
// effect on the next request, and a disabled or deleted account
// immediately has no identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/identity"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	sessionIDKey = "session_id"
)

// MinKeyLength is the shortest session key accepted without a warning.
const MinKeyLength = 32

// UserFetcher resolves a session's user id to the current identity.
// It returns false when the user no longer exists or may not sign in.
type UserFetcher interface {
	FetchIdentity(ctx context.Context, userID string) (identity.Identity, bool)
}

// SessionManager owns the cookie store and the middleware built on it.
type SessionManager struct {
	store    *sessions.CookieStore
	name     string
	fetcher  UserFetcher
	tracker  SessionTracker
	auditLog *auditlog.Logger
	log      *zap.Logger
}

// NewSessionManager creates the cookie store. secure marks cookies Secure
// with SameSite=None (production over HTTPS); otherwise SameSite=Lax so
// cookies work on http://localhost.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide 32 or more random characters")
	}
	if name == "" {
		return nil, errors.New("session name is empty")
	}
	if len(sessionKey) < MinKeyLength {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}
	// The cookie store checks length against this; keep it in step with MaxAge.
	store.MaxAge(store.Options.MaxAge)

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, tracker: newMemoryTracker(), log: logger}, nil
}

// SetSessionTracker replaces the process-local session records, typically
// with a MongoDB-backed store shared by every instance.
func (sm *SessionManager) SetSessionTracker(t SessionTracker) {
	if t != nil {
		sm.tracker = t
	}
}

// SetUserFetcher installs the lookup used by LoadSessionUser.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// SetAuditLogger installs the logger used to record page denials.
func (sm *SessionManager) SetAuditLogger(l *auditlog.Logger) { sm.auditLog = l }

// Store exposes the cookie store (logout copies its options).
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// Name returns the session cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// GetSession returns the request's session. On a decode error (for example
// a cookie signed with an old key) it still returns a fresh, usable session
// alongside the error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// Login opens a session record for userID and writes the cookie. A
// session the request already carried is ended first.
func (sm *SessionManager) Login(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.logSessionError(err, "login")
	}
	if prev, ok := sessionObjectID(sess); ok {
		if err := sm.tracker.End(r.Context(), prev, EndReplaced); err != nil {
			sm.log.Warn("could not end replaced session", zap.String("session_id", prev.Hex()), zap.Error(err))
		}
	}

	sessionID, err := sm.tracker.Start(r.Context(), userID, r.RemoteAddr, r.UserAgent())
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = userID.Hex()
	sess.Values[sessionIDKey] = sessionID.Hex()
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Logout ends the session record and expires the cookie. It is safe to
// call without a session. The cookie is expired even when ending the
// record fails; the error is still returned.
func (sm *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.logSessionError(err, "logout")
	}
	sessionID, hasRecord := sessionObjectID(sess)

	opts := *sm.store.Options
	opts.MaxAge = -1
	sess.Options = &opts
	sess.Values = map[interface{}]interface{}{}
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}

	if hasRecord {
		if err := sm.tracker.End(r.Context(), sessionID, EndLogout); err != nil {
			return fmt.Errorf("end session: %w", err)
		}
	}
	return nil
}

func sessionObjectID(sess *sessions.Session) (primitive.ObjectID, bool) {
	hex, _ := sess.Values[sessionIDKey].(string)
	oid, err := primitive.ObjectIDFromHex(hex)
	return oid, err == nil
}

// SessionUserID returns the user id stored in the session, if signed in.
func (sm *SessionManager) SessionUserID(r *http.Request) (string, bool) {
	sess, err := sm.GetSession(r)
	if err != nil {
		return "", false
	}
	if ok, _ := sess.Values[isAuthKey].(bool); !ok {
		return "", false
	}
	id, _ := sess.Values[userIDKey].(string)
	return id, id != ""
}

// SessionID returns the id of the request's session record, if signed in.
func (sm *SessionManager) SessionID(r *http.Request) (string, bool) {
	if _, ok := sm.SessionUserID(r); !ok {
		return "", false
	}
	sess, _ := sm.GetSession(r)
	oid, ok := sessionObjectID(sess)
	if !ok {
		return "", false
	}
	return oid.Hex(), true
}

// SessionActive reports whether sessionID is an open session of userID.
// Malformed ids and lookup errors count as closed.
func (sm *SessionManager) SessionActive(ctx context.Context, sessionID, userID string) bool {
	sid, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return false
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false
	}
	ok, err := sm.tracker.Active(ctx, sid, uid)
	if err != nil {
		sm.log.Warn("session lookup failed", zap.String("session_id", sessionID), zap.Error(err))
		return false
	}
	return ok
}

func (sm *SessionManager) logSessionError(err error, during string) {
	var scErr securecookie.Error
	if errors.As(err, &scErr) && scErr.IsDecode() {
		sm.log.Warn("session cookie invalid, using fresh session",
			zap.String("during", during), zap.Error(err))
		return
	}
	sm.log.Error("session store error, using fresh session",
		zap.String("during", during), zap.Error(err))
}

// ResolveIdentity looks up the current identity for the request's session.
// It returns identity.None when there is no session, the session record
// is missing or ended, there is no fetcher, or the user can no longer
// sign in.
func (sm *SessionManager) ResolveIdentity(r *http.Request) identity.Identity {
	userID, ok := sm.SessionUserID(r)
	if !ok || sm.fetcher == nil {
		return identity.None
	}
	sessionID, ok := sm.SessionID(r)
	if !ok || !sm.SessionActive(r.Context(), sessionID, userID) {
		return identity.None
	}
	id, ok := sm.fetcher.FetchIdentity(r.Context(), userID)
	if !ok {
		return identity.None
	}
	return id
}

// LoadSessionUser places the session's identity in the request context.
// Requests without one continue with identity.None.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := sm.ResolveIdentity(r)
		if id.Present() {
			r = r.WithContext(identity.WithContext(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn answers 401 when the request has no identity.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !CurrentIdentity(r).Present() {
			jsonutil.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePage answers 401 with no identity and 403 when the access policy
// does not let the identity open page.
func (sm *SessionManager) RequirePage(page string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := CurrentIdentity(r)
			if !id.Present() {
				jsonutil.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !accesspolicy.CanViewPage(id, page) {
				sm.auditLog.PermissionDenied(r.Context(), r, id, "page."+page, "")
				jsonutil.Error(w, http.StatusForbidden, "permission denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentIdentity returns the identity LoadSessionUser attached to r, or
// identity.None.
func CurrentIdentity(r *http.Request) identity.Identity {
	return identity.FromContext(r.Context())
}

// WithTestUser attaches id to r the way LoadSessionUser would. For tests.
func WithTestUser(r *http.Request, id identity.Identity) *http.Request {
	return r.WithContext(identity.WithContext(r.Context(), id))
}
