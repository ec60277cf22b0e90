// internal/app/features/logistics/logistics.go
package logistics

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	"github.com/nexera-events/symphony/internal/app/store/audit"
	"github.com/nexera-events/symphony/internal/app/system/authz"
	"github.com/nexera-events/symphony/internal/app/system/formutil"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/domain/models"
)

type listResponse struct {
	Items     []models.LogisticsItem `json:"items"`
	CanManage bool                   `json:"can_manage"`
}

// itemInput is the body of POST and PUT. An empty owner_id clears the owner.
type itemInput struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Quantity *int    `json:"quantity"`
	Location *string `json:"location"`
	OwnerID  *string `json:"owner_id"`
	Status   *string `json:"status"`
	Notes    *string `json:"notes"`
}

func (in itemInput) apply(it *models.LogisticsItem) error {
	if in.Name != nil {
		it.Name = *in.Name
	}
	if in.Category != nil {
		it.Category = *in.Category
	}
	if in.Quantity != nil {
		it.Quantity = *in.Quantity
	}
	if in.Location != nil {
		it.Location = *in.Location
	}
	if in.OwnerID != nil {
		owner, err := formutil.OptionalIDPtr(*in.OwnerID)
		if err != nil {
			return err
		}
		it.OwnerID = owner
	}
	if in.Status != nil {
		it.Status = *in.Status
	}
	if in.Notes != nil {
		it.Notes = *in.Notes
	}
	return nil
}

// ServeList handles GET /logistics, optionally narrowed by ?status=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	items, err := h.Items.List(ctx, query.Get(r, "status"))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "logistics list", err, "")
		return
	}
	jsonutil.Write(w, http.StatusOK, listResponse{Items: items, CanManage: accesspolicy.CanManageLogistics(id)})
}

// HandleCreate handles POST /logistics.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	if !accesspolicy.CanManageLogistics(id) {
		authz.Deny(w, r, h.AuditLog, "logistics.create", "")
		return
	}

	var in itemInput
	if err := jsonutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "logistics create: decode", err, "Invalid request body.")
		return
	}
	var it models.LogisticsItem
	if err := in.apply(&it); err != nil {
		h.ErrLog.LogBadRequest(w, r, "logistics create: owner id", err, "Invalid owner_id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Items.Create(ctx, it)
	if err != nil {
		h.storeError(w, r, "logistics create", err)
		return
	}
	h.AuditLog.Action(ctx, r, id, audit.EventLogisticsCreated, created.ID, map[string]string{"name": created.Name})
	jsonutil.Write(w, http.StatusCreated, created)
}

// HandleEdit handles PUT /logistics/{id}.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	itemID, err := formutil.IDParam(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "logistics edit: bad id", err, "Invalid item id.")
		return
	}
	if !accesspolicy.CanManageLogistics(id) {
		authz.Deny(w, r, h.AuditLog, "logistics.edit", itemID.Hex())
		return
	}

	var in itemInput
	if err := jsonutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "logistics edit: decode", err, "Invalid request body.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	it, err := h.Items.GetByID(ctx, itemID)
	if err != nil {
		h.storeError(w, r, "logistics edit", err)
		return
	}
	before := it.Status
	if err := in.apply(&it); err != nil {
		h.ErrLog.LogBadRequest(w, r, "logistics edit: owner id", err, "Invalid owner_id.")
		return
	}

	updated, err := h.Items.Update(ctx, it)
	if err != nil {
		h.storeError(w, r, "logistics edit", err)
		return
	}
	var details map[string]string
	if updated.Status != before {
		details = map[string]string{"from": before, "to": updated.Status}
	}
	h.AuditLog.Action(ctx, r, id, audit.EventLogisticsUpdated, updated.ID, details)
	jsonutil.Write(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /logistics/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	itemID, err := formutil.IDParam(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "logistics delete: bad id", err, "Invalid item id.")
		return
	}
	if !accesspolicy.CanManageLogistics(id) {
		authz.Deny(w, r, h.AuditLog, "logistics.delete", itemID.Hex())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Items.Delete(ctx, itemID); err != nil {
		h.storeError(w, r, "logistics delete", err)
		return
	}
	h.AuditLog.Action(ctx, r, id, audit.EventLogisticsDeleted, itemID, nil)
	w.WriteHeader(http.StatusNoContent)
}
