// internal/app/features/users/manage.go
package users

import (
	"context"
	"net/http"
	"strings"

	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	sessionstore "github.com/nexera-events/symphony/internal/app/store/sessions"
	userstore "github.com/nexera-events/symphony/internal/app/store/users"
	"github.com/nexera-events/symphony/internal/app/system/authz"
	"github.com/nexera-events/symphony/internal/app/system/formutil"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"github.com/nexera-events/symphony/internal/app/system/normalize"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.uber.org/zap"
)

// userInput is the body of POST and PUT. On PUT, omitted fields are left
// alone and an empty team_id removes the team.
type userInput struct {
	FullName   *string `json:"full_name"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	Status     *string `json:"status"`
	AuthMethod *string `json:"auth_method"`
	TeamID     *string `json:"team_id"`
	Password   *string `json:"password"`
}

func (in userInput) update() (userstore.Update, error) {
	upd := userstore.Update{
		FullName:   in.FullName,
		Email:      in.Email,
		Role:       in.Role,
		Status:     in.Status,
		AuthMethod: in.AuthMethod,
		Password:   in.Password,
	}
	if in.TeamID != nil {
		team, err := formutil.OptionalIDPtr(*in.TeamID)
		if err != nil {
			return upd, err
		}
		upd.TeamID = team
		upd.ClearTeam = team == nil
	}
	return upd, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// HandleCreate handles POST /users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	if !accesspolicy.CanManageUsers(id) {
		authz.Deny(w, r, h.AuditLog, "user.create", "")
		return
	}

	var in userInput
	if err := jsonutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "user create: decode", err, "Invalid request body.")
		return
	}
	upd, err := in.update()
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "user create: team id", err, "Invalid team_id.")
		return
	}
	u := models.User{
		FullName:   deref(in.FullName),
		Email:      deref(in.Email),
		Role:       deref(in.Role),
		Status:     deref(in.Status),
		AuthMethod: deref(in.AuthMethod),
		TeamID:     upd.TeamID,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Users.Create(ctx, u, deref(in.Password))
	if err != nil {
		h.storeError(w, r, "user create", err)
		return
	}
	created.PasswordHash = ""
	h.AuditLog.UserCreated(ctx, r, id, created.ID, created.Role)
	jsonutil.Write(w, http.StatusCreated, created)
}

// HandleEdit handles PUT /users/{id}. Admins may not change their own role
// or status, so the last admin cannot lock everyone out.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	userID, err := formutil.IDParam(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "user edit: bad id", err, "Invalid user id.")
		return
	}
	if !accesspolicy.CanManageUsers(id) {
		authz.Deny(w, r, h.AuditLog, "user.edit", userID.Hex())
		return
	}

	var in userInput
	if err := jsonutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "user edit: decode", err, "Invalid request body.")
		return
	}
	if userID == id.ID {
		roleChange := in.Role != nil && normalize.Role(*in.Role) != id.Role.String()
		statusChange := in.Status != nil && normalize.Status(*in.Status) != models.UserStatusActive
		if roleChange || statusChange {
			h.ErrLog.LogForbidden(w, r, "user edit: self role/status change", MsgSelfLockout)
			return
		}
	}
	upd, err := in.update()
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "user edit: team id", err, "Invalid team_id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, changed, err := h.Users.Update(ctx, userID, upd)
	if err != nil {
		h.storeError(w, r, "user edit", err)
		return
	}
	if u.Status == models.UserStatusDisabled && h.Sessions != nil {
		if n, err := h.Sessions.EndAllForUser(ctx, u.ID, sessionstore.EndDisabled); err != nil {
			h.Log.Warn("user edit: end sessions of disabled user", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		} else if n > 0 {
			h.Log.Info("ended sessions of disabled user", zap.String("user_id", u.ID.Hex()), zap.Int64("sessions", n))
		}
	}
	u.PasswordHash = ""
	h.AuditLog.UserUpdated(ctx, r, id, u.ID, strings.Join(changed, ","))
	jsonutil.Write(w, http.StatusOK, u)
}
