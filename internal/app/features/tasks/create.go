// internal/app/features/tasks/create.go
package tasks

import (
	"context"
	"net/http"

	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	"github.com/nexera-events/symphony/internal/app/store/audit"
	"github.com/nexera-events/symphony/internal/app/system/authz"
	"github.com/nexera-events/symphony/internal/app/system/identity"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/domain/models"
)

// HandleCreate handles POST /tasks.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	if !accesspolicy.CanCreateTask(id) {
		authz.Deny(w, r, h.AuditLog, "task.create", "")
		return
	}

	var in taskInput
	if err := jsonutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "task create: decode", err, "Invalid request body.")
		return
	}
	var draft models.Task
	if err := in.apply(&draft); err != nil {
		h.ErrLog.LogBadRequest(w, r, "task create: input", err, err.Error())
		return
	}
	if id.Role == identity.RoleTeamLead {
		draft.TeamID = id.TeamID
	}
	draft.CreatedBy = id.ID

	// The draft must itself be manageable: a lead creates on their own team.
	if !accesspolicy.CanManageTask(id, &draft) {
		authz.Deny(w, r, h.AuditLog, "task.create", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, err := h.Tasks.Create(ctx, draft)
	if err != nil {
		h.storeError(w, r, "task create", err)
		return
	}

	h.AuditLog.Action(ctx, r, id, audit.EventTaskCreated, task.ID, map[string]string{"team_id": task.TeamID.Hex()})
	jsonutil.Write(w, http.StatusCreated, task)
}
