// internal/app/features/sponsors/sponsors.go
package sponsors

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	"github.com/nexera-events/symphony/internal/app/store/audit"
	sponsorstore "github.com/nexera-events/symphony/internal/app/store/sponsors"
	"github.com/nexera-events/symphony/internal/app/system/authz"
	"github.com/nexera-events/symphony/internal/app/system/formutil"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/domain/models"
)

type listResponse struct {
	Sponsors       []models.Sponsor `json:"sponsors"`
	TotalCommitted int64            `json:"total_committed"`
	CanManage      bool             `json:"can_manage"`
}

// sponsorInput is the body of POST and PUT. Omitted fields keep their value.
type sponsorInput struct {
	Name         *string `json:"name"`
	Tier         *string `json:"tier"`
	ContactName  *string `json:"contact_name"`
	ContactEmail *string `json:"contact_email"`
	Amount       *int64  `json:"amount"`
	Status       *string `json:"status"`
	Notes        *string `json:"notes"`
}

func (in sponsorInput) apply(sp *models.Sponsor) {
	if in.Name != nil {
		sp.Name = *in.Name
	}
	if in.Tier != nil {
		sp.Tier = *in.Tier
	}
	if in.ContactName != nil {
		sp.ContactName = *in.ContactName
	}
	if in.ContactEmail != nil {
		sp.ContactEmail = *in.ContactEmail
	}
	if in.Amount != nil {
		sp.Amount = *in.Amount
	}
	if in.Status != nil {
		sp.Status = *in.Status
	}
	if in.Notes != nil {
		sp.Notes = *in.Notes
	}
}

// ServeList handles GET /sponsors, optionally narrowed by ?tier=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Sponsors.List(ctx, query.Get(r, "tier"))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "sponsors list", err, "")
		return
	}
	jsonutil.Write(w, http.StatusOK, listResponse{
		Sponsors:       list,
		TotalCommitted: sponsorstore.TotalCommitted(list),
		CanManage:      accesspolicy.CanManageSponsors(id),
	})
}

// HandleCreate handles POST /sponsors.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	if !accesspolicy.CanManageSponsors(id) {
		authz.Deny(w, r, h.AuditLog, "sponsor.create", "")
		return
	}

	var in sponsorInput
	if err := jsonutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "sponsor create: decode", err, "Invalid request body.")
		return
	}
	var sp models.Sponsor
	in.apply(&sp)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Sponsors.Create(ctx, sp)
	if err != nil {
		h.storeError(w, r, "sponsor create", err)
		return
	}
	h.AuditLog.Action(ctx, r, id, audit.EventSponsorCreated, created.ID, map[string]string{"name": created.Name, "tier": created.Tier})
	jsonutil.Write(w, http.StatusCreated, created)
}

// HandleEdit handles PUT /sponsors/{id}.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	sponsorID, err := formutil.IDParam(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "sponsor edit: bad id", err, "Invalid sponsor id.")
		return
	}
	if !accesspolicy.CanManageSponsors(id) {
		authz.Deny(w, r, h.AuditLog, "sponsor.edit", sponsorID.Hex())
		return
	}

	var in sponsorInput
	if err := jsonutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "sponsor edit: decode", err, "Invalid request body.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sp, err := h.Sponsors.GetByID(ctx, sponsorID)
	if err != nil {
		h.storeError(w, r, "sponsor edit", err)
		return
	}
	before := sp.Status
	in.apply(&sp)

	updated, err := h.Sponsors.Update(ctx, sp)
	if err != nil {
		h.storeError(w, r, "sponsor edit", err)
		return
	}
	var details map[string]string
	if updated.Status != before {
		details = map[string]string{"from": before, "to": updated.Status}
	}
	h.AuditLog.Action(ctx, r, id, audit.EventSponsorUpdated, updated.ID, details)
	jsonutil.Write(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /sponsors/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	sponsorID, err := formutil.IDParam(r, "id")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "sponsor delete: bad id", err, "Invalid sponsor id.")
		return
	}
	if !accesspolicy.CanManageSponsors(id) {
		authz.Deny(w, r, h.AuditLog, "sponsor.delete", sponsorID.Hex())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Sponsors.Delete(ctx, sponsorID); err != nil {
		h.storeError(w, r, "sponsor delete", err)
		return
	}
	h.AuditLog.Action(ctx, r, id, audit.EventSponsorDeleted, sponsorID, nil)
	w.WriteHeader(http.StatusNoContent)
}
