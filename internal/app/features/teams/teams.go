// internal/app/features/teams/teams.go
package teams

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	"github.com/nexera-events/symphony/internal/app/store/audit"
	teamstore "github.com/nexera-events/symphony/internal/app/store/teams"
	"github.com/nexera-events/symphony/internal/app/system/authz"
	"github.com/nexera-events/symphony/internal/app/system/formutil"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.uber.org/zap"
)

type listResponse struct {
	Teams []models.Team `json:"teams"`
}

// ServeList handles GET /teams. Any signed-in user may list teams.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	teams, err := h.Teams.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "teams list", err, "")
		return
	}
	jsonutil.Write(w, http.StatusOK, listResponse{Teams: teams})
}

// teamInput is the body of POST and PUT. An empty lead_id clears the lead.
type teamInput struct {
	Name   *string `json:"name"`
	Icon   *string `json:"icon"`
	LeadID *string `json:"lead_id"`
}

func (in teamInput) update() (teamstore.Update, error) {
	upd := teamstore.Update{Name: in.Name, Icon: in.Icon}
	if in.LeadID != nil {
		lead, err := formutil.OptionalIDPtr(*in.LeadID)
		if err != nil {
			return upd, err
		}
		upd.LeadID = lead
		upd.ClearLead = lead == nil
	}
	return upd, nil
}

// HandleCreate handles POST /teams.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	if !accesspolicy.CanManageTeams(id) {
		authz.Deny(w, r, h.AuditLog, "team.create", "")
		return
	}

	var in teamInput
	if err := jsonutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "team create: decode", err, "Invalid request body.")
		return
	}
	upd, err := in.update()
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "team create: lead id", err, "Invalid lead_id.")
		return
	}
	team := models.Team{LeadID: upd.LeadID}
	if upd.Name != nil {
		team.Name = *upd.Name
	}
	if upd.Icon != nil {
		team.Icon = *upd.Icon
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Teams.Create(ctx, team)
	if err != nil {
		h.storeError(w, r, "team create", err)
		return
	}
	h.AuditLog.Action(ctx, r, id, audit.EventTeamCreated, created.ID, map[string]string{"name": created.Name})
	jsonutil.Write(w, http.StatusCreated, created)
}

// HandleEdit handles PUT /teams/{id}.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	teamID, err := formutil.IDParam(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "team edit: bad id", err, "Invalid team id.")
		return
	}
	if !accesspolicy.CanManageTeams(id) {
		authz.Deny(w, r, h.AuditLog, "team.edit", teamID.Hex())
		return
	}

	var in teamInput
	if err := jsonutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "team edit: decode", err, "Invalid request body.")
		return
	}
	upd, err := in.update()
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "team edit: lead id", err, "Invalid lead_id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	team, err := h.Teams.Update(ctx, teamID, upd)
	if err != nil {
		h.storeError(w, r, "team edit", err)
		return
	}
	h.AuditLog.Action(ctx, r, id, audit.EventTeamUpdated, team.ID, nil)
	jsonutil.Write(w, http.StatusOK, team)
}

// HandleDelete handles DELETE /teams/{id}. Members and tasks of the team
// are detached, which leaves those tasks manageable by admins only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	teamID, err := formutil.IDParam(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "team delete: bad id", err, "Invalid team id.")
		return
	}
	if !accesspolicy.CanManageTeams(id) {
		authz.Deny(w, r, h.AuditLog, "team.delete", teamID.Hex())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Teams.Delete(ctx, teamID); err != nil {
		h.storeError(w, r, "team delete", err)
		return
	}

	users, err := h.Users.DetachTeam(ctx, teamID)
	if err != nil {
		h.Log.Error("team delete: detach users", zap.String("team_id", teamID.Hex()), zap.Error(err))
	}
	tasks, err := h.Tasks.DetachTeam(ctx, teamID)
	if err != nil {
		h.Log.Error("team delete: detach tasks", zap.String("team_id", teamID.Hex()), zap.Error(err))
	}

	h.AuditLog.Action(ctx, r, id, audit.EventTeamDeleted, teamID, map[string]string{
		"users_detached": strconv.FormatInt(users, 10),
		"tasks_detached": strconv.FormatInt(tasks, 10),
	})
	w.WriteHeader(http.StatusNoContent)
}
