// internal/app/system/authz/roles.go
package authz

import (
	"net/http"

	"github.com/nexera-events/symphony/internal/app/system/identity"
)

// HasAnyRole reports whether the current request's user has any of the given roles.
// Returns false if no user is present (i.e., not signed in).
func HasAnyRole(r *http.Request, roles ...identity.Role) bool {
	id, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if id.Role == want {
			return true
		}
	}
	return false
}

// HasRole is a convenience wrapper for a single role.
func HasRole(r *http.Request, role identity.Role) bool {
	return HasAnyRole(r, role)
}

// Role returns the current user's role and whether a user is present.
func Role(r *http.Request) (identity.Role, bool) {
	id, ok := UserCtx(r)
	return id.Role, ok
}
