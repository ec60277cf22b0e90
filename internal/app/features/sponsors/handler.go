// internal/app/features/sponsors/handler.go
package sponsors

import (
	"errors"
	"net/http"

	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	sponsorstore "github.com/nexera-events/symphony/internal/app/store/sponsors"
	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the sponsor pipeline. Reads are open to anyone who can
// open the sponsors page; writes need CanManageSponsors.
type Handler struct {
	Sponsors *sponsorstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(db *mongo.Database, hub *realtime.Hub, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Sponsors: sponsorstore.New(db, hub),
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, sponsorstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, op+": sponsor not found", "Sponsor not found.")
	case errors.Is(err, sponsorstore.ErrDuplicateName):
		h.ErrLog.LogConflict(w, r, op+": duplicate name", err, err.Error())
	case errors.Is(err, sponsorstore.ErrNameRequired),
		errors.Is(err, sponsorstore.ErrBadTier),
		errors.Is(err, sponsorstore.ErrBadStatus),
		errors.Is(err, sponsorstore.ErrNegativeAmount):
		h.ErrLog.LogBadRequest(w, r, op+": invalid sponsor", err, err.Error())
	default:
		h.ErrLog.LogServerError(w, r, op, err, "")
	}
}
