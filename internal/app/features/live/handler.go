// internal/app/features/live/handler.go
// Package live pushes board changes to browsers over a websocket.
package live

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	taskstore "github.com/nexera-events/symphony/internal/app/store/tasks"
	"github.com/nexera-events/symphony/internal/app/system/auth"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"github.com/nexera-events/symphony/internal/app/system/wsauth"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// TaskLister returns every task; the handler filters per connection.
type TaskLister interface {
	List(ctx context.Context) ([]models.Task, error)
}

// SessionChecker ties a connection to its session record. *auth.SessionManager
// implements it.
type SessionChecker interface {
	SessionID(r *http.Request) (string, bool)
	SessionActive(ctx context.Context, sessionID, userID string) bool
}

type Handler struct {
	Hub      *realtime.Hub
	Tasks    TaskLister
	Fetcher  auth.UserFetcher
	Sessions SessionChecker
	Accept   *websocket.AcceptOptions
	Log      *zap.Logger
}

// NewHandler constructs a live Handler. origins are ws_allowed_origins
// patterns; empty means same-origin only.
func NewHandler(db *mongo.Database, hub *realtime.Hub, fetcher auth.UserFetcher, sessions SessionChecker, origins []string, logger *zap.Logger) *Handler {
	return &Handler{
		Hub:      hub,
		Tasks:    taskstore.New(db, nil),
		Fetcher:  fetcher,
		Sessions: sessions,
		Accept:   wsauth.AcceptOptions(origins),
		Log:      logger,
	}
}
