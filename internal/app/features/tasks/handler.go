// internal/app/features/tasks/handler.go
package tasks

import (
	"errors"
	"net/http"

	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	taskstore "github.com/nexera-events/symphony/internal/app/store/tasks"
	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the task board. Every write re-runs the access policy
// against the task as currently stored, immediately before the write.
type Handler struct {
	Tasks    *taskstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler constructs a tasks Handler. hub may be nil.
func NewHandler(db *mongo.Database, hub *realtime.Hub, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Tasks:    taskstore.New(db, hub),
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

const msgNotFound = "Task not found."

// storeError maps a task store error to a response.
func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, taskstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, op+": task not found", msgNotFound)
	case errors.Is(err, taskstore.ErrConflict):
		h.ErrLog.LogConflict(w, r, op+": conflict", err, "Task was changed by someone else. Reload and try again.")
	case errors.Is(err, taskstore.ErrTitleRequired),
		errors.Is(err, taskstore.ErrBadPriority),
		errors.Is(err, taskstore.ErrBadStatus):
		h.ErrLog.LogBadRequest(w, r, op+": invalid task", err, err.Error())
	default:
		h.ErrLog.LogServerError(w, r, op, err, "")
	}
}
