// internal/app/features/tasks/delete.go
package tasks

import (
	"context"
	"net/http"

	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	"github.com/nexera-events/symphony/internal/app/store/audit"
	"github.com/nexera-events/symphony/internal/app/system/authz"
	"github.com/nexera-events/symphony/internal/app/system/formutil"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
)

// HandleDelete handles DELETE /tasks/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	taskID, err := formutil.IDParam(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "task delete: bad id", err, "Invalid task id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	stored, err := h.Tasks.GetByID(ctx, taskID)
	if err != nil {
		h.storeError(w, r, "task delete", err)
		return
	}
	if !accesspolicy.CanViewTask(id, stored) {
		h.ErrLog.LogNotFound(w, r, "task delete: not visible", msgNotFound)
		return
	}
	if !accesspolicy.CanDeleteTask(id, stored) {
		authz.Deny(w, r, h.AuditLog, "task.delete", taskID.Hex())
		return
	}

	if err := h.Tasks.Delete(ctx, stored); err != nil {
		h.storeError(w, r, "task delete", err)
		return
	}

	h.AuditLog.Action(ctx, r, id, audit.EventTaskDeleted, taskID, map[string]string{"title": stored.Title})
	w.WriteHeader(http.StatusNoContent)
}
