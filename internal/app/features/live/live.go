// internal/app/features/live/live.go
package live

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	taskstore "github.com/nexera-events/symphony/internal/app/store/tasks"
	teamstore "github.com/nexera-events/symphony/internal/app/store/teams"
	userstore "github.com/nexera-events/symphony/internal/app/store/users"
	"github.com/nexera-events/symphony/internal/app/system/authz"
	"github.com/nexera-events/symphony/internal/app/system/identity"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.uber.org/zap"
)

// Message types sent to clients.
const (
	TypeReady   = "ready"
	TypeTasks   = "tasks"
	TypeChanged = "changed"
)

// Close reasons.
const (
	ReasonSignedOut = "signed out"
	ReasonLagging   = "lagging, reconnect"
)

type readyMessage struct {
	Type   string `json:"type"`
	ConnID string `json:"conn_id"`
}

type tasksMessage struct {
	Type  string        `json:"type"`
	Tasks []models.Task `json:"tasks"`
}

type changedMessage struct {
	Type       string `json:"type"`
	Collection string `json:"collection"`
}

// refiltered reports whether a change to collection can alter which tasks
// a subscriber sees or how they read.
func refiltered(collection string) bool {
	switch collection {
	case taskstore.Collection, userstore.Collection, teamstore.Collection:
		return true
	}
	return false
}

// conn is one websocket subscriber. Its Holder is the identity every push
// is filtered through; it is cleared the moment the session ends.
type conn struct {
	ws        *websocket.Conn
	holder    *identity.Holder
	userID    string
	sessionID string
	log       *zap.Logger
}

// ServeLive handles GET /live. After the upgrade it sends a ready message
// and the caller's visible tasks, then one message per change. Each change
// re-resolves the caller's identity, so role and team edits apply at once.
// When the session ends or the user is disabled or deleted, the connection
// gets an empty task list and is closed.
func (h *Handler) ServeLive(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	var sessionID string
	if h.Sessions != nil {
		sessionID, _ = h.Sessions.SessionID(r)
	}

	ws, err := websocket.Accept(w, r, h.Accept)
	if err != nil {
		h.Log.Debug("live: accept failed", zap.Error(err))
		return
	}
	connID := uuid.NewString()
	c := &conn{
		ws:        ws,
		holder:    identity.NewHolder(),
		userID:    id.ID.Hex(),
		sessionID: sessionID,
		log:       h.Log.With(zap.String("conn_id", connID), zap.String("user_id", id.ID.Hex())),
	}
	c.holder.Set(id)

	sub := h.Hub.Subscribe(realtime.DefaultBuffer)
	defer h.Hub.Unsubscribe(sub)

	ctx := ws.CloseRead(r.Context())
	c.log.Debug("live: connected")

	if err := h.write(ctx, ws, readyMessage{Type: TypeReady, ConnID: connID}); err != nil {
		return
	}
	if err := h.pushTasks(ctx, c); err != nil {
		c.log.Debug("live: initial push failed", zap.Error(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			_ = ws.Close(websocket.StatusNormalClosure, "closed")
			return
		case change, ok := <-sub:
			if !ok {
				_ = ws.Close(websocket.StatusTryAgainLater, ReasonLagging)
				return
			}
			if change.Collection == realtime.Sessions {
				if change.ID.Hex() != c.sessionID || h.sessionOpen(ctx, c) {
					continue
				}
				c.log.Info("live: session ended, closing")
				h.signOut(ctx, c)
				return
			}

			if !h.sessionOpen(ctx, c) {
				c.log.Info("live: session ended, closing")
				h.signOut(ctx, c)
				return
			}
			fresh, ok := h.Fetcher.FetchIdentity(ctx, c.userID)
			if !ok {
				c.log.Info("live: identity gone, closing")
				h.signOut(ctx, c)
				return
			}
			c.holder.Set(fresh)

			if refiltered(change.Collection) {
				err = h.pushTasks(ctx, c)
			} else {
				err = h.write(ctx, ws, changedMessage{Type: TypeChanged, Collection: change.Collection})
			}
			if err != nil {
				c.log.Debug("live: push failed", zap.Error(err))
				_ = ws.Close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}

// sessionOpen reports whether the connection's session record is still
// open. Connections without a session checker or record are not tracked.
func (h *Handler) sessionOpen(ctx context.Context, c *conn) bool {
	if h.Sessions == nil || c.sessionID == "" {
		return true
	}
	return h.Sessions.SessionActive(ctx, c.sessionID, c.userID)
}

// signOut clears the connection's identity, pushes the now empty task
// list, and closes the socket.
func (h *Handler) signOut(ctx context.Context, c *conn) {
	c.holder.Clear()
	if err := h.pushTasks(ctx, c); err != nil {
		c.log.Debug("live: final push failed", zap.Error(err))
	}
	_ = c.ws.Close(websocket.StatusPolicyViolation, ReasonSignedOut)
}

func (h *Handler) pushTasks(ctx context.Context, c *conn) error {
	id := c.holder.Get()
	visible := []models.Task{}
	if id.Present() {
		listCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
		defer cancel()
		all, err := h.Tasks.List(listCtx)
		if err != nil {
			return err
		}
		visible = accesspolicy.VisibleTasks(id, all)
	}
	return h.write(ctx, c.ws, tasksMessage{Type: TypeTasks, Tasks: visible})
}

func (h *Handler) write(ctx context.Context, ws *websocket.Conn, v any) error {
	writeCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	return wsjson.Write(writeCtx, ws, v)
}
