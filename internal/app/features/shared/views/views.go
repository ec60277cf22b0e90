// internal/app/features/shared/views/views.go
package shared

import (
	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	"github.com/nexera-events/symphony/internal/app/system/identity"
)

// Viewer is the wire shape of the signed-in identity plus the controls the
// client may render for it.
type Viewer struct {
	ID           string                    `json:"id"`
	Name         string                    `json:"name"`
	Email        string                    `json:"email"`
	Role         string                    `json:"role"`
	TeamID       string                    `json:"team_id,omitempty"`
	TeamName     string                    `json:"team_name,omitempty"`
	Capabilities accesspolicy.Capabilities `json:"capabilities"`
}

// ViewerFor renders id. Capabilities are evaluated now and not cached.
func ViewerFor(id identity.Identity) Viewer {
	v := Viewer{
		ID:           id.ID.Hex(),
		Name:         id.Name,
		Email:        id.Email,
		Role:         id.Role.String(),
		Capabilities: accesspolicy.CapabilitiesFor(id),
	}
	if id.HasTeam() {
		v.TeamID = id.TeamID.Hex()
		v.TeamName = id.TeamName
	}
	return v
}
