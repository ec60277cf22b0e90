// internal/app/features/tasks/status.go
package tasks

import (
	"context"
	"net/http"

	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	"github.com/nexera-events/symphony/internal/app/store/audit"
	taskstore "github.com/nexera-events/symphony/internal/app/store/tasks"
	"github.com/nexera-events/symphony/internal/app/system/authz"
	"github.com/nexera-events/symphony/internal/app/system/formutil"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/domain/models"
)

type statusInput struct {
	Status string `json:"status"`
}

// HandleStatus handles PATCH /tasks/{id}/status. Volunteers may move
// tasks assigned to them; leads and admins whatever they manage.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	taskID, err := formutil.IDParam(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "task status: bad id", err, "Invalid task id.")
		return
	}

	var in statusInput
	if err := jsonutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "task status: decode", err, "Invalid request body.")
		return
	}
	status, ok := models.ParseTaskStatus(in.Status)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "task status: bad status", nil, taskstore.ErrBadStatus.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	stored, err := h.Tasks.GetByID(ctx, taskID)
	if err != nil {
		h.storeError(w, r, "task status", err)
		return
	}
	if !accesspolicy.CanViewTask(id, stored) {
		h.ErrLog.LogNotFound(w, r, "task status: not visible", msgNotFound)
		return
	}
	if !accesspolicy.CanUpdateTaskStatus(id, stored) {
		authz.Deny(w, r, h.AuditLog, "task.status", taskID.Hex())
		return
	}

	task, err := h.Tasks.UpdateStatus(ctx, stored, status)
	if err != nil {
		h.storeError(w, r, "task status", err)
		return
	}

	h.AuditLog.Action(ctx, r, id, audit.EventTaskStatusChange, task.ID, map[string]string{
		"from": string(stored.Status),
		"to":   string(task.Status),
	})
	jsonutil.Write(w, http.StatusOK, task)
}
