package users_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	"github.com/nexera-events/symphony/internal/app/features/users"
	userstore "github.com/nexera-events/symphony/internal/app/store/users"
	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/auth"
	"github.com/nexera-events/symphony/internal/app/system/indexes"
	"github.com/nexera-events/symphony/internal/domain/models"
	"github.com/nexera-events/symphony/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testKey = "test-session-key-for-testing-only-0123456789"

func newRouter(t *testing.T, h *users.Handler) chi.Router {
	t.Helper()
	sm, err := auth.NewSessionManager(testKey, "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return users.Routes(h, sm)
}

func newHandler(t *testing.T) (*users.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, nil); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	h := users.NewHandler(db, nil, uierrors.NewErrorLogger(nil), auditlog.New(nil, zap.NewNop(), auditlog.Config{}), zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func serve(router chi.Router, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMutations_LeadDeniedBeforeStore(t *testing.T) {
	h := &users.Handler{
		Log:      zap.NewNop(),
		ErrLog:   uierrors.NewErrorLogger(nil),
		AuditLog: auditlog.New(nil, zap.NewNop(), auditlog.Config{}),
	}
	router := newRouter(t, h)
	lead := testutil.TeamLeadIdentity(primitive.NewObjectID(), "Team A")

	serve(router, testutil.WithUser(testutil.JSONRequest(http.MethodPost, "/", map[string]string{
		"full_name": "Sneaky", "email": "s@example.com", "role": "admin", "password": "longenough",
	}), lead)).AssertStatus(t, http.StatusForbidden)

	serve(router, testutil.WithUser(testutil.JSONRequest(http.MethodPut, "/"+lead.ID.Hex(), map[string]string{
		"role": "admin",
	}), lead)).AssertStatus(t, http.StatusForbidden)
}

func TestList_OmitsPasswordHash(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fx.CreateTeam(ctx, "Team A")
	fx.CreateVolunteer(ctx, "Val", "val@example.com", team.ID)
	fx.CreateAdmin(ctx, "Ada", "ada@example.com")

	router := newRouter(t, h)
	rec := serve(router, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/?role=volunteer"), testutil.VolunteerIdentity(team.ID)))
	rec.AssertStatus(t, http.StatusOK)
	if got := rec.Body.String(); strings.Contains(got, "password_hash") || strings.Contains(got, "$2a$") {
		t.Errorf("list leaks password hash: %s", got)
	}
	var body struct {
		Users []models.User `json:"users"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Users) != 1 || body.Users[0].FullName != "Val" {
		t.Errorf("users = %+v", body.Users)
	}
}

func TestCreateAndEdit(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fx.CreateTeam(ctx, "Team A")
	router := newRouter(t, h)
	admin := testutil.AdminIdentity()

	rec := serve(router, testutil.WithUser(testutil.JSONRequest(http.MethodPost, "/", map[string]string{
		"full_name": "Lee Lead",
		"email":     "Lee@Example.com",
		"role":      "team_lead",
		"team_id":   team.ID.Hex(),
		"password":  "longenough",
	}), admin))
	rec.AssertStatus(t, http.StatusCreated)
	var u models.User
	rec.DecodeJSON(t, &u)
	if u.Email != "lee@example.com" || u.TeamID == nil || *u.TeamID != team.ID || u.Status != models.UserStatusActive {
		t.Fatalf("created user = %+v", u)
	}

	stored, err := h.Users.GetByEmail(ctx, "lee@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if !userstore.CheckPassword(stored.PasswordHash, "longenough") {
		t.Error("stored password does not verify")
	}

	dup := serve(router, testutil.WithUser(testutil.JSONRequest(http.MethodPost, "/", map[string]string{
		"full_name": "Other", "email": "lee@example.com", "role": "volunteer", "password": "longenough",
	}), admin))
	dup.AssertStatus(t, http.StatusConflict)

	weak := serve(router, testutil.WithUser(testutil.JSONRequest(http.MethodPost, "/", map[string]string{
		"full_name": "Weak", "email": "weak@example.com", "role": "volunteer", "password": "short",
	}), admin))
	weak.AssertStatus(t, http.StatusBadRequest)

	rec = serve(router, testutil.WithUser(testutil.JSONRequest(http.MethodPut, "/"+u.ID.Hex(), map[string]string{
		"role":    "volunteer",
		"team_id": "",
	}), admin))
	rec.AssertStatus(t, http.StatusOK)
	var edited models.User
	rec.DecodeJSON(t, &edited)
	if edited.Role != "volunteer" || edited.TeamID != nil || edited.FullName != "Lee Lead" {
		t.Errorf("edited user = %+v", edited)
	}
}

func TestEdit_AdminCannotDemoteSelf(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := fx.CreateAdmin(ctx, "Ada", "ada@example.com")
	router := newRouter(t, h)
	self := testutil.IdentityFor(me, "")

	for _, body := range []map[string]string{
		{"role": "volunteer"},
		{"status": "disabled"},
	} {
		rec := serve(router, testutil.WithUser(testutil.JSONRequest(http.MethodPut, "/"+me.ID.Hex(), body), self))
		rec.AssertStatus(t, http.StatusForbidden)
		rec.AssertJSONError(t, users.MsgSelfLockout)
	}

	rec := serve(router, testutil.WithUser(testutil.JSONRequest(http.MethodPut, "/"+me.ID.Hex(), map[string]string{
		"full_name": "Ada L.",
	}), self))
	rec.AssertStatus(t, http.StatusOK)
}

func TestEdit_DisableEndsSessions(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fx.CreateTeam(ctx, "Team A")
	vol := fx.CreateVolunteer(ctx, "Val", "val@example.com", team.ID)
	sid, err := h.Sessions.Start(ctx, vol.ID, "10.0.0.2:4000", "test-agent")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	router := newRouter(t, h)
	serve(router, testutil.WithUser(testutil.JSONRequest(http.MethodPut, "/"+vol.ID.Hex(), map[string]string{
		"status": "disabled",
	}), testutil.AdminIdentity())).AssertStatus(t, http.StatusOK)

	if ok, _ := h.Sessions.Active(ctx, sid, vol.ID); ok {
		t.Error("disabled user's session still active")
	}
}
