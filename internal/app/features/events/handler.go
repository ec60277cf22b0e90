// internal/app/features/events/handler.go
package events

import (
	"errors"
	"net/http"

	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	eventstore "github.com/nexera-events/symphony/internal/app/store/events"
	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const msgNotFound = "Event not found."

type Handler struct {
	Events   *eventstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(db *mongo.Database, hub *realtime.Hub, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:   eventstore.New(db, hub),
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, eventstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, op+": event not found", msgNotFound)
	case errors.Is(err, eventstore.ErrTitleRequired),
		errors.Is(err, eventstore.ErrStartRequired),
		errors.Is(err, eventstore.ErrEndsBefore):
		h.ErrLog.LogBadRequest(w, r, op+": invalid event", err, err.Error())
	default:
		h.ErrLog.LogServerError(w, r, op, err, "")
	}
}
