// internal/app/features/users/handler.go
package users

import (
	"errors"
	"net/http"

	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	sessionstore "github.com/nexera-events/symphony/internal/app/store/sessions"
	userstore "github.com/nexera-events/symphony/internal/app/store/users"
	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MsgSelfLockout is returned when an admin tries to change their own role
// or status.
const MsgSelfLockout = "You can't change your own role or status. Ask another admin to make those changes."

type Handler struct {
	Users    *userstore.Store
	Sessions *sessionstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler constructs a users Handler bound to the given database.
func NewHandler(db *mongo.Database, hub *realtime.Hub, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    userstore.New(db, hub),
		Sessions: sessionstore.New(db, hub),
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, op+": user not found", "User not found.")
	case errors.Is(err, userstore.ErrDuplicateEmail):
		h.ErrLog.LogConflict(w, r, op+": duplicate email", err, err.Error())
	case errors.Is(err, userstore.ErrBadRole),
		errors.Is(err, userstore.ErrBadStatus),
		errors.Is(err, userstore.ErrBadAuthMethod),
		errors.Is(err, userstore.ErrWeakPassword),
		errors.Is(err, userstore.ErrMissingFields):
		h.ErrLog.LogBadRequest(w, r, op+": invalid user", err, err.Error())
	default:
		h.ErrLog.LogServerError(w, r, op, err, "")
	}
}
