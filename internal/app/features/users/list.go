// internal/app/features/users/list.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	userstore "github.com/nexera-events/symphony/internal/app/store/users"
	"github.com/nexera-events/symphony/internal/app/system/formutil"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"github.com/nexera-events/symphony/internal/app/system/normalize"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/domain/models"
)

type listResponse struct {
	Users []models.User `json:"users"`
}

// ServeList handles GET /users. Any signed-in user may list accounts so the
// board can offer an assignee picker; hashes never leave the store.
// ?role=, ?status= and ?team_id= narrow the list.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f := userstore.ListFilter{
		Role:   normalize.Filter(query.Get(r, "role")),
		Status: normalize.Filter(query.Get(r, "status")),
	}
	if raw := query.Get(r, "team_id"); raw != "" {
		team, err := formutil.OptionalIDPtr(raw)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "users list: bad team id", err, "Invalid team_id.")
			return
		}
		f.TeamID = team
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Users.List(ctx, f)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "users list", err, "")
		return
	}
	jsonutil.Write(w, http.StatusOK, listResponse{Users: list})
}

// ServeUser handles GET /users/{id}.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	userID, err := formutil.IDParam(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "user view: bad id", err, "Invalid user id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.storeError(w, r, "user view", err)
		return
	}
	jsonutil.Write(w, http.StatusOK, u)
}
