// internal/app/features/logistics/handler.go
package logistics

import (
	"errors"
	"net/http"

	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	logisticsstore "github.com/nexera-events/symphony/internal/app/store/logistics"
	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Items    *logisticsstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(db *mongo.Database, hub *realtime.Hub, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Items:    logisticsstore.New(db, hub),
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, logisticsstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, op+": item not found", "Item not found.")
	case errors.Is(err, logisticsstore.ErrNameRequired),
		errors.Is(err, logisticsstore.ErrBadStatus),
		errors.Is(err, logisticsstore.ErrNegativeQuantity):
		h.ErrLog.LogBadRequest(w, r, op+": invalid item", err, err.Error())
	default:
		h.ErrLog.LogServerError(w, r, op, err, "")
	}
}
