package shared_test

import (
	"testing"

	shared "github.com/nexera-events/symphony/internal/app/features/shared/views"
	"github.com/nexera-events/symphony/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestViewerFor(t *testing.T) {
	teamID := primitive.NewObjectID()

	lead := shared.ViewerFor(testutil.TeamLeadIdentity(teamID, "Sponsorship"))
	if lead.Role != "team_lead" || lead.TeamID != teamID.Hex() || lead.TeamName != "Sponsorship" {
		t.Errorf("lead viewer = %+v", lead)
	}
	if !lead.Capabilities.CreateTask || !lead.Capabilities.ManageSponsors || lead.Capabilities.ManageLogistics {
		t.Errorf("lead capabilities = %+v", lead.Capabilities)
	}

	admin := shared.ViewerFor(testutil.AdminIdentity())
	if admin.TeamID != "" || admin.TeamName != "" {
		t.Errorf("admin has team fields: %+v", admin)
	}
	if !admin.Capabilities.ManageUsers {
		t.Error("admin cannot manage users")
	}
}
