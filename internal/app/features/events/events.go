// internal/app/features/events/events.go
package events

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	"github.com/nexera-events/symphony/internal/app/store/audit"
	"github.com/nexera-events/symphony/internal/app/system/authz"
	"github.com/nexera-events/symphony/internal/app/system/formutil"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/domain/models"
)

type listResponse struct {
	Events []models.Event `json:"events"`
}

// ServeList handles GET /events. ?upcoming=true hides events that have
// already started.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	var after *time.Time
	if query.Get(r, "upcoming") == "true" {
		now := time.Now().UTC()
		after = &now
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Events.List(ctx, after)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "events list", err, "")
		return
	}
	jsonutil.Write(w, http.StatusOK, listResponse{Events: list})
}

// HandleCreate handles POST /events.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	if !accesspolicy.CanCreateEvent(id) {
		authz.Deny(w, r, h.AuditLog, "event.create", "")
		return
	}

	var in eventInput
	if err := jsonutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "event create: decode", err, "Invalid request body.")
		return
	}
	ev := models.Event{CreatedBy: id.ID}
	in.apply(&ev)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Events.Create(ctx, ev)
	if err != nil {
		h.storeError(w, r, "event create", err)
		return
	}
	h.AuditLog.Action(ctx, r, id, audit.EventEventCreated, created.ID, map[string]string{"title": created.Title})
	jsonutil.Write(w, http.StatusCreated, created)
}

// HandleEdit handles PUT /events/{id}.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	eventID, err := formutil.IDParam(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "event edit: bad id", err, "Invalid event id.")
		return
	}
	if !accesspolicy.CanManageEvents(id) {
		authz.Deny(w, r, h.AuditLog, "event.edit", eventID.Hex())
		return
	}

	var in eventInput
	if err := jsonutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "event edit: decode", err, "Invalid request body.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		h.storeError(w, r, "event edit", err)
		return
	}
	in.apply(&ev)

	updated, err := h.Events.Update(ctx, ev)
	if err != nil {
		h.storeError(w, r, "event edit", err)
		return
	}
	h.AuditLog.Action(ctx, r, id, audit.EventEventUpdated, updated.ID, nil)
	jsonutil.Write(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /events/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	eventID, err := formutil.IDParam(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "event delete: bad id", err, "Invalid event id.")
		return
	}
	if !accesspolicy.CanManageEvents(id) {
		authz.Deny(w, r, h.AuditLog, "event.delete", eventID.Hex())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Events.Delete(ctx, eventID); err != nil {
		h.storeError(w, r, "event delete", err)
		return
	}
	h.AuditLog.Action(ctx, r, id, audit.EventEventDeleted, eventID, nil)
	w.WriteHeader(http.StatusNoContent)
}
