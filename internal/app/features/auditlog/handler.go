// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	"github.com/nexera-events/symphony/internal/app/store/audit"
	userstore "github.com/nexera-events/symphony/internal/app/store/users"
	sysaudit "github.com/nexera-events/symphony/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Events   *audit.Store
	Users    *userstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *sysaudit.Logger
}

// NewHandler constructs an audit log feature handler bound to
// the given Mongo database and logger.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, auditLog *sysaudit.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:   audit.New(db),
		Users:    userstore.New(db, nil),
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: auditLog,
	}
}
