// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/auth"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

// NewHandler constructs a logout Handler. Ending the session record is
// what notifies live connections; the session store publishes it.
func NewHandler(sessionMgr *auth.SessionManager, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   auditLog,
	}
}

// ServeLogout handles POST /logout. It answers 204 with or without a
// session, so a client can retry it freely. If the session record could
// not be ended it answers 500; the cookie is expired either way.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	var userID primitive.ObjectID
	if hex, ok := h.SessionMgr.SessionUserID(r); ok {
		userID, _ = primitive.ObjectIDFromHex(hex)
	}

	if err := h.SessionMgr.Logout(w, r); err != nil {
		h.Log.Error("logout: end session", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "A server error occurred.")
		return
	}

	h.AuditLog.Logout(r.Context(), r, userID)
	w.WriteHeader(http.StatusNoContent)
}
