package tasks_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	"github.com/nexera-events/symphony/internal/app/features/tasks"
	"github.com/nexera-events/symphony/internal/app/store/audit"
	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/auth"
	"github.com/nexera-events/symphony/internal/app/system/identity"
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
	handler  *tasks.Handler
	fixtures *testutil.Fixtures
	logs     *observer.ObservedLogs
}

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(testKey, "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

func observedAudit() (*auditlog.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return auditlog.New(nil, zap.New(core), auditlog.Config{Admin: auditlog.DestLog}), logs
}

// newDBLessEnv builds a handler with no store. Any request that reaches
// the store panics, so a passing test proves the deny happened first.
func newDBLessEnv(t *testing.T) env {
	t.Helper()
	audits, logs := observedAudit()
	h := &tasks.Handler{Log: zap.NewNop(), ErrLog: uierrors.NewErrorLogger(nil), AuditLog: audits}
	return env{router: tasks.Routes(h, newSessionManager(t)), handler: h, logs: logs}
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	audits, logs := observedAudit()
	h := tasks.NewHandler(db, nil, uierrors.NewErrorLogger(nil), audits, zap.NewNop())
	return env{
		router:   tasks.Routes(h, newSessionManager(t)),
		handler:  h,
		fixtures: testutil.NewFixtures(t, db),
		logs:     logs,
	}
}

func (e env) do(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func asUser(req *http.Request, id identity.Identity) *http.Request {
	return testutil.WithUser(req, id)
}

func denials(logs *observer.ObservedLogs) int {
	return logs.FilterField(zap.String("event_type", audit.EventPermissionDenied)).Len()
}

func TestCreate_VolunteerDeniedBeforeStore(t *testing.T) {
	e := newDBLessEnv(t)
	vol := testutil.VolunteerIdentity(primitive.NewObjectID())

	req := asUser(testutil.JSONRequest(http.MethodPost, "/", map[string]string{"title": "x"}), vol)
	rec := e.do(req)

	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertJSONError(t, "permission denied")
	if got := denials(e.logs); got != 1 {
		t.Errorf("permission_denied audit events = %d, want 1", got)
	}
}

func TestRoutes_SignedOut(t *testing.T) {
	e := newDBLessEnv(t)

	for _, req := range []*http.Request{
		testutil.NewRequest(http.MethodGet, "/"),
		testutil.JSONRequest(http.MethodPost, "/", map[string]string{"title": "x"}),
		testutil.NewRequest(http.MethodDelete, "/"+primitive.NewObjectID().Hex()),
	} {
		rec := e.do(req)
		rec.AssertStatus(t, http.StatusUnauthorized)
	}
}

func TestCreate_UnknownRoleDenied(t *testing.T) {
	e := newDBLessEnv(t)
	odd := identity.Identity{ID: primitive.NewObjectID(), Name: "Odd", Role: identity.RoleUnknown}

	rec := e.do(asUser(testutil.JSONRequest(http.MethodPost, "/", map[string]string{"title": "x"}), odd))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestList_Visibility(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teamA := e.fixtures.CreateTeam(ctx, "Team A")
	teamB := e.fixtures.CreateTeam(ctx, "Team B")
	vol := e.fixtures.CreateVolunteer(ctx, "Val", "val@example.com", teamA.ID)

	t1 := e.fixtures.CreateTask(ctx, "A assigned to Val", teamA.ID, vol.ID)
	t2 := e.fixtures.CreateTask(ctx, "A unassigned", teamA.ID, primitive.NilObjectID)
	t3 := e.fixtures.CreateTask(ctx, "B task", teamB.ID, primitive.NilObjectID)

	tests := []struct {
		name string
		id   identity.Identity
		want []primitive.ObjectID
	}{
		{"admin", testutil.AdminIdentity(), []primitive.ObjectID{t1.ID, t2.ID, t3.ID}},
		{"lead A", testutil.TeamLeadIdentity(teamA.ID, "Team A"), []primitive.ObjectID{t1.ID, t2.ID}},
		{"volunteer", testutil.IdentityFor(vol, "Team A"), []primitive.ObjectID{t1.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(asUser(testutil.NewRequest(http.MethodGet, "/"), tt.id))
			rec.AssertStatus(t, http.StatusOK)

			var body struct {
				Tasks []models.Task `json:"tasks"`
			}
			rec.DecodeJSON(t, &body)
			if len(body.Tasks) != len(tt.want) {
				t.Fatalf("got %d tasks, want %d", len(body.Tasks), len(tt.want))
			}
			for i, want := range tt.want {
				if body.Tasks[i].ID != want {
					t.Errorf("task[%d] = %s, want %s", i, body.Tasks[i].Title, want.Hex())
				}
			}
		})
	}
}

func TestList_StatusFilter(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := e.fixtures.CreateTeam(ctx, "Team A")
	e.fixtures.CreateTask(ctx, "todo", team.ID, primitive.NilObjectID)
	admin := testutil.AdminIdentity()

	rec := e.do(asUser(testutil.NewRequest(http.MethodGet, "/?status=done"), admin))
	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Tasks  []models.Task             `json:"tasks"`
		Counts map[models.TaskStatus]int `json:"counts"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Tasks) != 0 {
		t.Errorf("done tasks = %d, want 0", len(body.Tasks))
	}
	if body.Counts[models.TaskToDo] != 1 {
		t.Errorf("counts = %v, want one To Do", body.Counts)
	}

	bad := e.do(asUser(testutil.NewRequest(http.MethodGet, "/?status=blocked"), admin))
	bad.AssertStatus(t, http.StatusBadRequest)
}

func TestView_InvisibleIsNotFound(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teamA := e.fixtures.CreateTeam(ctx, "Team A")
	teamB := e.fixtures.CreateTeam(ctx, "Team B")
	task := e.fixtures.CreateTask(ctx, "B only", teamB.ID, primitive.NilObjectID)

	lead := testutil.TeamLeadIdentity(teamA.ID, "Team A")
	rec := e.do(asUser(testutil.NewRequest(http.MethodGet, "/"+task.ID.Hex()), lead))
	rec.AssertStatus(t, http.StatusNotFound)

	leadB := testutil.TeamLeadIdentity(teamB.ID, "Team B")
	e.do(asUser(testutil.NewRequest(http.MethodGet, "/"+task.ID.Hex()), leadB)).AssertStatus(t, http.StatusOK)
}

func TestCreate_LeadForcedOntoOwnTeam(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teamA := e.fixtures.CreateTeam(ctx, "Team A")
	teamB := e.fixtures.CreateTeam(ctx, "Team B")
	lead := testutil.TeamLeadIdentity(teamA.ID, "Team A")

	req := testutil.JSONRequest(http.MethodPost, "/", map[string]string{
		"title":    "Set up stage",
		"team_id":  teamB.ID.Hex(),
		"priority": "high",
	})
	rec := e.do(asUser(req, lead))
	rec.AssertStatus(t, http.StatusCreated)

	var task models.Task
	rec.DecodeJSON(t, &task)
	if task.TeamID != teamA.ID {
		t.Errorf("TeamID = %s, want lead's team %s", task.TeamID.Hex(), teamA.ID.Hex())
	}
	if task.Status != models.TaskToDo || task.Priority != models.PriorityHigh {
		t.Errorf("status/priority = %q/%q", task.Status, task.Priority)
	}
	if task.CreatedBy != lead.ID {
		t.Errorf("CreatedBy = %s, want %s", task.CreatedBy.Hex(), lead.ID.Hex())
	}
}

func TestCreate_LeadWithoutTeamDenied(t *testing.T) {
	e := newDBLessEnv(t)
	lead := identity.Identity{ID: primitive.NewObjectID(), Name: "Lonely", Role: identity.RoleTeamLead}

	rec := e.do(asUser(testutil.JSONRequest(http.MethodPost, "/", map[string]string{"title": "x"}), lead))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestEdit_LeadCannotMoveTaskToAnotherTeam(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teamA := e.fixtures.CreateTeam(ctx, "Team A")
	teamB := e.fixtures.CreateTeam(ctx, "Team B")
	task := e.fixtures.CreateTask(ctx, "Ours", teamA.ID, primitive.NilObjectID)
	lead := testutil.TeamLeadIdentity(teamA.ID, "Team A")

	move := testutil.JSONRequest(http.MethodPut, "/"+task.ID.Hex(), map[string]string{"team_id": teamB.ID.Hex()})
	rec := e.do(asUser(move, lead))
	rec.AssertStatus(t, http.StatusForbidden)
	if got := denials(e.logs); got != 1 {
		t.Errorf("permission_denied audit events = %d, want 1", got)
	}

	rename := testutil.JSONRequest(http.MethodPut, "/"+task.ID.Hex(), map[string]string{"title": "Ours, renamed"})
	ok := e.do(asUser(rename, lead))
	ok.AssertStatus(t, http.StatusOK)
	var got models.Task
	ok.DecodeJSON(t, &got)
	if got.Title != "Ours, renamed" || got.TeamID != teamA.ID {
		t.Errorf("edited task = %+v", got)
	}
}

// Writes to a task the caller cannot see answer like a missing task, so
// ids of other teams' work are not confirmed.
func TestEdit_OtherTeamIsNotFound(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teamA := e.fixtures.CreateTeam(ctx, "Team A")
	teamB := e.fixtures.CreateTeam(ctx, "Team B")
	task := e.fixtures.CreateTask(ctx, "Theirs", teamB.ID, primitive.NilObjectID)
	lead := testutil.TeamLeadIdentity(teamA.ID, "Team A")

	req := testutil.JSONRequest(http.MethodPut, "/"+task.ID.Hex(), map[string]string{"title": "mine now"})
	e.do(asUser(req, lead)).AssertStatus(t, http.StatusNotFound)

	req = testutil.JSONRequest(http.MethodPatch, "/"+task.ID.Hex()+"/status", map[string]string{"status": "Done"})
	e.do(asUser(req, lead)).AssertStatus(t, http.StatusNotFound)

	e.do(asUser(testutil.NewRequest(http.MethodDelete, "/"+task.ID.Hex()), lead)).
		AssertStatus(t, http.StatusNotFound)

	got, err := e.handler.Tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("task gone: %v", err)
	}
	if got.Title != "Theirs" || got.Status != models.TaskToDo {
		t.Errorf("invisible task was written: %+v", got)
	}
}

func TestStatus_Volunteer(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := e.fixtures.CreateTeam(ctx, "Team A")
	vol := e.fixtures.CreateVolunteer(ctx, "Val", "val@example.com", team.ID)
	mine := e.fixtures.CreateTask(ctx, "Mine", team.ID, vol.ID)
	other := e.fixtures.CreateTask(ctx, "Not mine", team.ID, primitive.NilObjectID)
	volID := testutil.IdentityFor(vol, "Team A")

	req := testutil.JSONRequest(http.MethodPatch, "/"+mine.ID.Hex()+"/status", map[string]string{"status": "in_progress"})
	rec := e.do(asUser(req, volID))
	rec.AssertStatus(t, http.StatusOK)
	var got models.Task
	rec.DecodeJSON(t, &got)
	if got.Status != models.TaskInProgress {
		t.Errorf("Status = %q, want In Progress", got.Status)
	}

	req = testutil.JSONRequest(http.MethodPatch, "/"+other.ID.Hex()+"/status", map[string]string{"status": "Done"})
	e.do(asUser(req, volID)).AssertStatus(t, http.StatusNotFound)

	req = testutil.JSONRequest(http.MethodPatch, "/"+mine.ID.Hex()+"/status", map[string]string{"status": "Blocked"})
	e.do(asUser(req, volID)).AssertStatus(t, http.StatusBadRequest)
}

func TestDelete(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := e.fixtures.CreateTeam(ctx, "Team A")
	vol := e.fixtures.CreateVolunteer(ctx, "Val", "val@example.com", team.ID)
	task := e.fixtures.CreateTask(ctx, "Doomed", team.ID, vol.ID)

	e.do(asUser(testutil.NewRequest(http.MethodDelete, "/"+task.ID.Hex()), testutil.IdentityFor(vol, "Team A"))).
		AssertStatus(t, http.StatusForbidden)

	e.do(asUser(testutil.NewRequest(http.MethodDelete, "/"+task.ID.Hex()), testutil.AdminIdentity())).
		AssertStatus(t, http.StatusNoContent)

	e.do(asUser(testutil.NewRequest(http.MethodDelete, "/"+task.ID.Hex()), testutil.AdminIdentity())).
		AssertStatus(t, http.StatusNotFound)
}

func TestBadID(t *testing.T) {
	e := newDBLessEnv(t)
	rec := e.do(asUser(testutil.NewRequest(http.MethodGet, "/not-an-id"), testutil.AdminIdentity()))
	rec.AssertStatus(t, http.StatusBadRequest)
}
