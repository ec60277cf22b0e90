// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	shared "github.com/nexera-events/symphony/internal/app/features/shared/views"
	userstore "github.com/nexera-events/symphony/internal/app/store/users"
	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/auth"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"github.com/nexera-events/symphony/internal/app/system/normalize"
	"github.com/nexera-events/symphony/internal/app/system/ratelimit"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Client-facing messages. Unknown email and wrong password share one
// message so the endpoint does not reveal which accounts exist.
const (
	MsgInvalidCredentials = "Invalid email or password."
	MsgMissingFields      = "Email and password are required."
	MsgDisabled           = "This account is disabled."
)

type Handler struct {
	Users         *userstore.Store
	Fetcher       auth.UserFetcher
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	AuditLog      *auditlog.Logger
	Limiter       *ratelimit.LoginLimiter // nil disables throttling
	GoogleEnabled bool                    // True if Google OAuth is configured
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	auditLog *auditlog.Logger,
	limiter *ratelimit.LoginLimiter,
	googleEnabled bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:         userstore.New(db, nil),
		Fetcher:       userstore.NewFetcher(db, logger),
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		AuditLog:      auditLog,
		Limiter:       limiter,
		GoogleEnabled: googleEnabled,
	}
}

type methodsResponse struct {
	Methods []string `json:"methods"`
}

// ServeLogin handles GET /login and lists the sign-in methods on offer.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	methods := []string{models.AuthMethodPassword}
	if h.GoogleEnabled {
		methods = append(methods, models.AuthMethodGoogle)
	}
	jsonutil.Write(w, http.StatusOK, methodsResponse{Methods: methods})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// readCredentials accepts a JSON body or a urlencoded form.
func readCredentials(r *http.Request) (credentials, error) {
	var c credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := jsonutil.Decode(r, &c); err != nil {
			return c, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return c, err
		}
		c.Email = r.PostForm.Get("email")
		c.Password = r.PostForm.Get("password")
	}
	c.Email = normalize.Email(c.Email)
	return c, nil
}

// HandleLoginPost handles POST /login.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: malformed body", err, "Invalid request body.")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		jsonutil.Error(w, http.StatusBadRequest, MsgMissingFields)
		return
	}

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, creds.Email); !ok {
			h.AuditLog.LoginFailedRateLimit(r.Context(), r, creds.Email)
			jsonutil.Error(w, http.StatusTooManyRequests, msg)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, creds.Email)
	if errors.Is(err, userstore.ErrNotFound) {
		h.AuditLog.LoginFailedUserNotFound(ctx, r, creds.Email)
		jsonutil.Error(w, http.StatusUnauthorized, MsgInvalidCredentials)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "login: find user", err, "")
		return
	}

	if normalize.Status(u.Status) == models.UserStatusDisabled {
		h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID, creds.Email)
		jsonutil.Error(w, http.StatusForbidden, MsgDisabled)
		return
	}
	if !userstore.CheckPassword(u.PasswordHash, creds.Password) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, creds.Email)
		jsonutil.Error(w, http.StatusUnauthorized, MsgInvalidCredentials)
		return
	}

	id, ok := h.Fetcher.FetchIdentity(ctx, u.ID.Hex())
	if !ok {
		// Disabled or removed between the two reads.
		jsonutil.Error(w, http.StatusUnauthorized, MsgInvalidCredentials)
		return
	}

	if err := h.SessionMgr.Login(w, r, u.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "login: save session", err, "")
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(creds.Email)
	}

	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.TeamID, models.AuthMethodPassword, creds.Email)
	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()), zap.String("role", id.Role.String()))
	jsonutil.Write(w, http.StatusOK, shared.ViewerFor(id))
}
