// internal/app/features/dashboard/handler.go
package dashboard

import (
	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	eventstore "github.com/nexera-events/symphony/internal/app/store/events"
	taskstore "github.com/nexera-events/symphony/internal/app/store/tasks"
	teamstore "github.com/nexera-events/symphony/internal/app/store/teams"
	userstore "github.com/nexera-events/symphony/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Tasks  *taskstore.Store
	Events *eventstore.Store
	Teams  *teamstore.Store
	Users  *userstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Tasks:  taskstore.New(db, nil),
		Events: eventstore.New(db, nil),
		Teams:  teamstore.New(db, nil),
		Users:  userstore.New(db, nil),
		Log:    logger,
		ErrLog: errLog,
	}
}
