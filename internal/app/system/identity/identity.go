// internal/app/system/identity/identity.go
package identity

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of roles a signed-in user can hold.
// Anything that does not parse to one of the named roles is RoleUnknown,
// which every policy check treats as deny.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleTeamLead
	RoleVolunteer
)

// ParseRole maps a stored role string onto Role. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "team_lead":
		return RoleTeamLead
	case "volunteer":
		return RoleVolunteer
	default:
		return RoleUnknown
	}
}

// String returns the storage form of the role.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleTeamLead:
		return "team_lead"
	case RoleVolunteer:
		return "volunteer"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the named roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeamLead, RoleVolunteer:
		return true
	default:
		return false
	}
}

// Identity is the authenticated user for the current session: who they are,
// what role they hold, and which team they belong to.
type Identity struct {
	ID       primitive.ObjectID
	Name     string
	Email    string
	Role     Role
	TeamID   primitive.ObjectID // NilObjectID when the user has no team
	TeamName string
}

// None is the "no identity" sentinel. Every policy check denies it.
var None = Identity{}

// Present reports whether id is an actual identity rather than None.
func (id Identity) Present() bool {
	return id != None
}

// HasTeam reports whether the identity is affiliated with a team.
func (id Identity) HasTeam() bool {
	return !id.TeamID.IsZero()
}

// Record is the resolved user record delivered by the authentication
// layer once per successful login.
type Record struct {
	ID       primitive.ObjectID
	Name     string
	Email    string
	Role     string
	TeamID   *primitive.ObjectID
	TeamName string
}

// FromRecord builds an Identity from a login result. No validation is done
// beyond role parsing: an unrecognised role yields RoleUnknown.
func FromRecord(rec Record) Identity {
	id := Identity{
		ID:    rec.ID,
		Name:  rec.Name,
		Email: rec.Email,
		Role:  ParseRole(rec.Role),
	}
	if rec.TeamID != nil && !rec.TeamID.IsZero() {
		id.TeamID = *rec.TeamID
		id.TeamName = rec.TeamName
	}
	return id
}
