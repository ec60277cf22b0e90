// internal/app/features/teams/handler.go
package teams

import (
	"errors"
	"net/http"

	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	taskstore "github.com/nexera-events/symphony/internal/app/store/tasks"
	teamstore "github.com/nexera-events/symphony/internal/app/store/teams"
	userstore "github.com/nexera-events/symphony/internal/app/store/users"
	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves team listing and admin team management.
type Handler struct {
	Teams    *teamstore.Store
	Users    *userstore.Store
	Tasks    *taskstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler constructs a teams Handler. hub may be nil.
func NewHandler(db *mongo.Database, hub *realtime.Hub, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Teams:    teamstore.New(db, hub),
		Users:    userstore.New(db, hub),
		Tasks:    taskstore.New(db, hub),
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, teamstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, op+": team not found", "Team not found.")
	case errors.Is(err, teamstore.ErrDuplicateName):
		h.ErrLog.LogConflict(w, r, op+": duplicate name", err, err.Error())
	case errors.Is(err, teamstore.ErrNameRequired):
		h.ErrLog.LogBadRequest(w, r, op+": invalid team", err, err.Error())
	default:
		h.ErrLog.LogServerError(w, r, op, err, "")
	}
}
