// internal/app/features/tasks/edit.go
package tasks

import (
	"context"
	"net/http"

	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	"github.com/nexera-events/symphony/internal/app/store/audit"
	"github.com/nexera-events/symphony/internal/app/system/authz"
	"github.com/nexera-events/symphony/internal/app/system/formutil"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
)

// HandleEdit handles PUT /tasks/{id}. The caller must be allowed to edit
// both the stored task and the task as it would be after the edit, so a
// team lead cannot hand a task to another team.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	taskID, err := formutil.IDParam(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "task edit: bad id", err, "Invalid task id.")
		return
	}

	var in taskInput
	if err := jsonutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "task edit: decode", err, "Invalid request body.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	stored, err := h.Tasks.GetByID(ctx, taskID)
	if err != nil {
		h.storeError(w, r, "task edit", err)
		return
	}
	if !accesspolicy.CanViewTask(id, stored) {
		h.ErrLog.LogNotFound(w, r, "task edit: not visible", msgNotFound)
		return
	}
	if !accesspolicy.CanEditTask(id, stored) {
		authz.Deny(w, r, h.AuditLog, "task.edit", taskID.Hex())
		return
	}

	edited := stored
	if err := in.apply(&edited); err != nil {
		h.ErrLog.LogBadRequest(w, r, "task edit: input", err, err.Error())
		return
	}
	if !accesspolicy.CanEditTask(id, edited) {
		authz.Deny(w, r, h.AuditLog, "task.edit", taskID.Hex())
		return
	}

	task, err := h.Tasks.Update(ctx, stored, edited)
	if err != nil {
		h.storeError(w, r, "task edit", err)
		return
	}

	h.AuditLog.Action(ctx, r, id, audit.EventTaskUpdated, task.ID, nil)
	jsonutil.Write(w, http.StatusOK, task)
}
