// internal/app/features/analytics/analytics.go
package analytics

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	"github.com/nexera-events/symphony/internal/app/system/authz"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// load returns the caller's visible tasks and the team name lookup.
func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request) ([]models.Task, map[primitive.ObjectID]string, bool) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return nil, nil, false
	}
	all, err := h.Tasks.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "analytics: list tasks", err, "")
		return nil, nil, false
	}
	names, err := h.Teams.Names(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "analytics: team names", err, "")
		return nil, nil, false
	}
	return accesspolicy.VisibleTasks(id, all), names, true
}

// ServeSummary handles GET /analytics.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	visible, names, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	jsonutil.Write(w, http.StatusOK, Summarize(visible, names, time.Now().UTC()))
}

// ServeTasksCSV handles GET /analytics/tasks.csv and streams the caller's
// visible tasks as CSV.
func (h *Handler) ServeTasksCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	visible, names, ok := h.load(ctx, w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("tasks_%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"ID", "Title", "Team", "Status", "Priority", "Due Date", "Assignee ID", "Created At"})
	for _, t := range visible {
		team := ""
		if !t.TeamID.IsZero() {
			team = names[t.TeamID]
		}
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		assignee := ""
		if !t.AssigneeID.IsZero() {
			assignee = t.AssigneeID.Hex()
		}
		_ = cw.Write([]string{
			t.ID.Hex(),
			t.Title,
			team,
			string(t.Status),
			string(t.Priority),
			due,
			assignee,
			t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.Log.Warn("analytics csv write failed", zap.Error(err))
	}
}
