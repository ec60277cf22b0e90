// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/auth"
	"github.com/nexera-events/symphony/internal/app/system/identity"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
)

// MsgPermissionDenied is the body of every 403 produced by a policy check.
const MsgPermissionDenied = "permission denied"

// UserCtx returns the request's identity and whether one is present.
// With no identity it returns identity.None, false, so callers can trust
// that ok=true means an authenticated user with a valid id.
func UserCtx(r *http.Request) (identity.Identity, bool) {
	id := auth.CurrentIdentity(r)
	if !id.Present() || id.ID.IsZero() {
		return identity.None, false
	}
	return id, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	return HasRole(r, identity.RoleAdmin)
}

// IsTeamLead reports whether the current request's user is a team lead.
func IsTeamLead(r *http.Request) bool {
	return HasRole(r, identity.RoleTeamLead)
}

// IsVolunteer reports whether the current request's user is a volunteer.
func IsVolunteer(r *http.Request) bool {
	return HasRole(r, identity.RoleVolunteer)
}

// Deny answers 403 and records a permission_denied audit event for the
// request's identity. action names the refused operation ("task.edit");
// subject is the record id, or "" for creates.
func Deny(w http.ResponseWriter, r *http.Request, audit *auditlog.Logger, action, subject string) {
	id, _ := UserCtx(r)
	audit.PermissionDenied(r.Context(), r, id, action, subject)
	jsonutil.Error(w, http.StatusForbidden, MsgPermissionDenied)
}

// Unauthorized answers 401.
func Unauthorized(w http.ResponseWriter) {
	jsonutil.Error(w, http.StatusUnauthorized, "unauthorized")
}
