// internal/app/policy/accesspolicy/resources.go
package accesspolicy

import (
	"github.com/nexera-events/symphony/internal/app/system/identity"
	"github.com/nexera-events/symphony/internal/domain/models"
)

// CanManageTeams reports whether id may create, edit, or delete teams.
func CanManageTeams(id identity.Identity) bool {
	return id.Role == identity.RoleAdmin
}

// CanManageUsers reports whether id may create users or change their role,
// team, or status.
func CanManageUsers(id identity.Identity) bool {
	return id.Role == identity.RoleAdmin
}

// CanManageSponsors reports whether id may edit sponsor records. The lead of
// the Sponsorship team is delegated this alongside admins.
func CanManageSponsors(id identity.Identity) bool {
	return isAdminOrLeadOf(id, models.TeamSponsorship)
}

// CanManageLogistics reports whether id may edit logistics records. The lead
// of the Logistics team is delegated this alongside admins.
func CanManageLogistics(id identity.Identity) bool {
	return isAdminOrLeadOf(id, models.TeamLogistics)
}

// CanCreateEvent reports whether id may create events.
func CanCreateEvent(id identity.Identity) bool {
	return id.Role == identity.RoleAdmin
}

// CanManageEvents reports whether id may edit or delete events. Events span
// teams, so only admins touch them.
func CanManageEvents(id identity.Identity) bool {
	return id.Role == identity.RoleAdmin
}

func isAdminOrLeadOf(id identity.Identity, teamName string) bool {
	switch id.Role {
	case identity.RoleAdmin:
		return true
	case identity.RoleTeamLead:
		return id.HasTeam() && id.TeamName == teamName
	case identity.RoleVolunteer, identity.RoleUnknown:
		return false
	}
	return false
}
