// internal/app/features/dashboard/dashboard.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	shared "github.com/nexera-events/symphony/internal/app/features/shared/views"
	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	taskstore "github.com/nexera-events/symphony/internal/app/store/tasks"
	"github.com/nexera-events/symphony/internal/app/system/authz"
	"github.com/nexera-events/symphony/internal/app/system/identity"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UpcomingLimit caps the events listed on the dashboard.
const UpcomingLimit = 5

// Totals holds the directory-wide counts only admins see.
type Totals struct {
	Users int64 `json:"users"`
	Teams int   `json:"teams"`
}

// Response is the dashboard payload. Task figures cover the caller's
// visible tasks only.
type Response struct {
	Viewer     shared.Viewer             `json:"viewer"`
	TaskCounts map[models.TaskStatus]int `json:"task_counts"`
	TaskTotal  int                       `json:"task_total"`
	MyOpen     int                       `json:"my_open"`
	Upcoming   []models.Event            `json:"upcoming_events"`
	Totals     *Totals                   `json:"totals,omitempty"`
}

// ServeDashboard handles GET /dashboard. Clients re-fetch it to refresh
// the counts when the live socket reports a change.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	all, err := h.Tasks.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: list tasks", err, "")
		return
	}
	visible := accesspolicy.VisibleTasks(id, all)

	now := time.Now().UTC()
	events, err := h.Events.List(ctx, &now)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: list events", err, "")
		return
	}
	if len(events) > UpcomingLimit {
		events = events[:UpcomingLimit]
	}

	resp := Response{
		Viewer:     shared.ViewerFor(id),
		TaskCounts: taskstore.CountByStatus(visible),
		TaskTotal:  len(visible),
		MyOpen:     countOpen(visible, id.ID),
		Upcoming:   events,
	}

	if id.Role == identity.RoleAdmin {
		totals, err := h.totals(ctx)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "dashboard: totals", err, "")
			return
		}
		resp.Totals = &totals
	}

	jsonutil.Write(w, http.StatusOK, resp)
}

func (h *Handler) totals(ctx context.Context) (Totals, error) {
	users, err := h.Users.Count(ctx)
	if err != nil {
		return Totals{}, err
	}
	teams, err := h.Teams.List(ctx)
	if err != nil {
		return Totals{}, err
	}
	return Totals{Users: users, Teams: len(teams)}, nil
}

// countOpen counts tasks assigned to userID that are not Done.
func countOpen(tasks []models.Task, userID primitive.ObjectID) int {
	n := 0
	for _, t := range tasks {
		if t.AssigneeID == userID && t.Status != models.TaskDone {
			n++
		}
	}
	return n
}
