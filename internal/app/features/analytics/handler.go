// internal/app/features/analytics/handler.go
package analytics

import (
	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	taskstore "github.com/nexera-events/symphony/internal/app/store/tasks"
	teamstore "github.com/nexera-events/symphony/internal/app/store/teams"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves task analytics. Every figure is computed over the tasks
// the caller can see, so a team lead's report covers their team only.
type Handler struct {
	Tasks  *taskstore.Store
	Teams  *teamstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Tasks:  taskstore.New(db, nil),
		Teams:  teamstore.New(db, nil),
		Log:    logger,
		ErrLog: errLog,
	}
}
