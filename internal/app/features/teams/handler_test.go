package teams_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	"github.com/nexera-events/symphony/internal/app/features/teams"
	"github.com/nexera-events/symphony/internal/app/store/audit"
	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/auth"
	"github.com/nexera-events/symphony/internal/domain/models"
	"github.com/nexera-events/symphony/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testKey = "test-session-key-for-testing-only-0123456789"

type env struct {
	router   chi.Router
	handler  *teams.Handler
	fixtures *testutil.Fixtures
	logs     *observer.ObservedLogs
}

func newRouter(t *testing.T, h *teams.Handler) chi.Router {
	t.Helper()
	sm, err := auth.NewSessionManager(testKey, "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return teams.Routes(h, sm)
}

func newDBLessEnv(t *testing.T) env {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	audits := auditlog.New(nil, zap.New(core), auditlog.Config{Admin: auditlog.DestLog})
	h := &teams.Handler{Log: zap.NewNop(), ErrLog: uierrors.NewErrorLogger(nil), AuditLog: audits}
	return env{router: newRouter(t, h), handler: h, logs: logs}
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	core, logs := observer.New(zapcore.InfoLevel)
	audits := auditlog.New(nil, zap.New(core), auditlog.Config{Admin: auditlog.DestLog})
	h := teams.NewHandler(db, nil, uierrors.NewErrorLogger(nil), audits, zap.NewNop())
	return env{router: newRouter(t, h), handler: h, fixtures: testutil.NewFixtures(t, db), logs: logs}
}

func (e env) do(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestMutations_NonAdminDenied(t *testing.T) {
	e := newDBLessEnv(t)
	teamID := primitive.NewObjectID()
	target := "/" + primitive.NewObjectID().Hex()

	for _, who := range []struct {
		name string
		req  func() *http.Request
	}{
		{"create", func() *http.Request {
			return testutil.JSONRequest(http.MethodPost, "/", map[string]string{"name": "New"})
		}},
		{"edit", func() *http.Request {
			return testutil.JSONRequest(http.MethodPut, target, map[string]string{"name": "New"})
		}},
		{"delete", func() *http.Request { return testutil.NewRequest(http.MethodDelete, target) }},
	} {
		t.Run(who.name, func(t *testing.T) {
			lead := testutil.WithUser(who.req(), testutil.TeamLeadIdentity(teamID, "Team A"))
			e.do(lead).AssertStatus(t, http.StatusForbidden)

			vol := testutil.WithUser(who.req(), testutil.VolunteerIdentity(teamID))
			e.do(vol).AssertStatus(t, http.StatusForbidden)
		})
	}

	if got := e.logs.FilterField(zap.String("event_type", audit.EventPermissionDenied)).Len(); got != 6 {
		t.Errorf("permission_denied audit events = %d, want 6", got)
	}
}

func TestList_AnySignedInUser(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := e.fixtures.CreateTeam(ctx, "Alpha")
	e.fixtures.CreateTeam(ctx, "Beta")

	rec := e.do(testutil.WithUser(testutil.NewRequest(http.MethodGet, "/"), testutil.VolunteerIdentity(a.ID)))
	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Teams []models.Team `json:"teams"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Teams) != 2 {
		t.Fatalf("got %d teams, want 2", len(body.Teams))
	}

	e.do(testutil.NewRequest(http.MethodGet, "/")).AssertStatus(t, http.StatusUnauthorized)
}

func TestAdminCRUD(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := testutil.AdminIdentity()
	lead := e.fixtures.CreateUser(ctx, "Lee", "lee@example.com", "team_lead", nil)

	rec := e.do(testutil.WithUser(testutil.JSONRequest(http.MethodPost, "/", map[string]string{
		"name":    "Catering",
		"icon":    "utensils",
		"lead_id": lead.ID.Hex(),
	}), admin))
	rec.AssertStatus(t, http.StatusCreated)
	var team models.Team
	rec.DecodeJSON(t, &team)
	if team.Name != "Catering" || team.LeadID == nil || *team.LeadID != lead.ID {
		t.Fatalf("created team = %+v", team)
	}

	rec = e.do(testutil.WithUser(testutil.JSONRequest(http.MethodPut, "/"+team.ID.Hex(), map[string]string{
		"name":    "Food",
		"lead_id": "",
	}), admin))
	rec.AssertStatus(t, http.StatusOK)
	var edited models.Team
	rec.DecodeJSON(t, &edited)
	if edited.Name != "Food" || edited.LeadID != nil || edited.Icon != "utensils" {
		t.Errorf("edited team = %+v", edited)
	}

	bad := e.do(testutil.WithUser(testutil.JSONRequest(http.MethodPut, "/"+team.ID.Hex(), map[string]string{
		"lead_id": "nope",
	}), admin))
	bad.AssertStatus(t, http.StatusBadRequest)

	missing := e.do(testutil.WithUser(testutil.JSONRequest(http.MethodPost, "/", map[string]string{"icon": "x"}), admin))
	missing.AssertStatus(t, http.StatusBadRequest)
}

func TestDelete_DetachesMembersAndTasks(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := e.fixtures.CreateTeam(ctx, "Doomed")
	vol := e.fixtures.CreateVolunteer(ctx, "Val", "val@example.com", team.ID)
	task := e.fixtures.CreateTask(ctx, "Orphan", team.ID, vol.ID)

	e.do(testutil.WithUser(testutil.NewRequest(http.MethodDelete, "/"+team.ID.Hex()), testutil.AdminIdentity())).
		AssertStatus(t, http.StatusNoContent)

	u, err := e.handler.Users.GetByID(ctx, vol.ID)
	if err != nil {
		t.Fatalf("GetByID user: %v", err)
	}
	if u.TeamID != nil {
		t.Errorf("user TeamID = %v, want nil", u.TeamID)
	}
	got, err := e.handler.Tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID task: %v", err)
	}
	if !got.TeamID.IsZero() {
		t.Errorf("task TeamID = %s, want zero", got.TeamID.Hex())
	}
	if got.AssigneeID != vol.ID {
		t.Errorf("assignee changed to %s", got.AssigneeID.Hex())
	}

	e.do(testutil.WithUser(testutil.NewRequest(http.MethodDelete, "/"+team.ID.Hex()), testutil.AdminIdentity())).
		AssertStatus(t, http.StatusNotFound)
}
