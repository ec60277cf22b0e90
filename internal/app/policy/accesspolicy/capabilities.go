// internal/app/policy/accesspolicy/capabilities.go
package accesspolicy

import "github.com/nexera-events/symphony/internal/app/system/identity"

// Capabilities is the set of subject-free verdicts the client uses to decide
// which controls to render. It is a snapshot; the write path re-checks.
type Capabilities struct {
	CreateTask      bool `json:"create_task"`
	ManageTeams     bool `json:"manage_teams"`
	ManageUsers     bool `json:"manage_users"`
	ManageSponsors  bool `json:"manage_sponsors"`
	ManageLogistics bool `json:"manage_logistics"`
	CreateEvent     bool `json:"create_event"`
	ManageEvents    bool `json:"manage_events"`
	ViewAnalytics   bool `json:"view_analytics"`
}

// CapabilitiesFor evaluates every subject-free check for id.
func CapabilitiesFor(id identity.Identity) Capabilities {
	return Capabilities{
		CreateTask:      CanCreateTask(id),
		ManageTeams:     CanManageTeams(id),
		ManageUsers:     CanManageUsers(id),
		ManageSponsors:  CanManageSponsors(id),
		ManageLogistics: CanManageLogistics(id),
		CreateEvent:     CanCreateEvent(id),
		ManageEvents:    CanManageEvents(id),
		ViewAnalytics:   CanViewPage(id, PageAnalytics),
	}
}
