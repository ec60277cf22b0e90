// internal/app/features/tasks/list.go
package tasks

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	taskstore "github.com/nexera-events/symphony/internal/app/store/tasks"
	"github.com/nexera-events/symphony/internal/app/system/authz"
	"github.com/nexera-events/symphony/internal/app/system/formutil"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"github.com/nexera-events/symphony/internal/app/system/normalize"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/domain/models"
)

type listResponse struct {
	Tasks  []models.Task             `json:"tasks"`
	Counts map[models.TaskStatus]int `json:"counts"`
}

// ServeList handles GET /tasks. The caller sees only the tasks the access
// policy makes visible to them; ?status= narrows that set further.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}

	var want models.TaskStatus
	if raw := normalize.Filter(query.Get(r, "status")); raw != "" {
		st, ok := models.ParseTaskStatus(raw)
		if !ok {
			h.ErrLog.LogBadRequest(w, r, "tasks list: bad status filter", nil, taskstore.ErrBadStatus.Error())
			return
		}
		want = st
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	all, err := h.Tasks.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "tasks list", err, "")
		return
	}

	visible := accesspolicy.VisibleTasks(id, all)
	counts := taskstore.CountByStatus(visible)
	if want != "" {
		filtered := make([]models.Task, 0, len(visible))
		for _, t := range visible {
			if t.Status == want {
				filtered = append(filtered, t)
			}
		}
		visible = filtered
	}

	jsonutil.Write(w, http.StatusOK, listResponse{Tasks: visible, Counts: counts})
}

// ServeTask handles GET /tasks/{id}. A task the caller cannot see is
// reported as missing.
func (h *Handler) ServeTask(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	taskID, err := formutil.IDParam(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "task view: bad id", err, "Invalid task id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, taskID)
	if err != nil {
		h.storeError(w, r, "task view", err)
		return
	}
	if !accesspolicy.CanViewTask(id, task) {
		h.ErrLog.LogNotFound(w, r, "task view: not visible", msgNotFound)
		return
	}
	jsonutil.Write(w, http.StatusOK, task)
}
