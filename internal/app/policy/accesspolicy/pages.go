// internal/app/policy/accesspolicy/pages.go
package accesspolicy

import (
	"strings"

	"github.com/nexera-events/symphony/internal/app/system/identity"
)

// Page names used for navigation checks.
const (
	PageDashboard = "dashboard"
	PageTasks     = "tasks"
	PageTeams     = "teams"
	PageEvents    = "events"
	PageSponsors  = "sponsors"
	PageLogistics = "logistics"
	PageAnalytics = "analytics"
	PageUsers     = "users"
)

// pageDenials names the pages a role may not open. Pages not listed here
// are open to every recognised role.
var pageDenials = map[identity.Role][]string{
	identity.RoleVolunteer: {PageAnalytics},
}

// CanViewPage reports whether id may navigate to page.
//
// For a recognised role this is default-allow with a named denylist, so a
// new page is reachable without touching the policy. With no identity or an
// unknown role it denies.
func CanViewPage(id identity.Identity, page string) bool {
	if !id.Role.Valid() {
		return false
	}
	page = strings.ToLower(strings.TrimSpace(page))
	for _, denied := range pageDenials[id.Role] {
		if page == denied {
			return false
		}
	}
	return true
}
