package analytics_test

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nexera-events/symphony/internal/app/features/analytics"
	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	"github.com/nexera-events/symphony/internal/app/system/auth"
	"github.com/nexera-events/symphony/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testKey = "test-session-key-for-testing-only-0123456789"

func newRouter(t *testing.T, h *analytics.Handler) chi.Router {
	t.Helper()
	sm, err := auth.NewSessionManager(testKey, "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return analytics.Routes(h, sm)
}

func TestVolunteerCannotOpenAnalytics(t *testing.T) {
	router := newRouter(t, &analytics.Handler{Log: zap.NewNop(), ErrLog: uierrors.NewErrorLogger(nil)})

	for _, path := range []string{"/", "/tasks.csv"} {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, path), testutil.VolunteerIdentity(primitive.NewObjectID())))
		rec.AssertStatus(t, http.StatusForbidden)
	}
}

func TestLeadSeesOwnTeamOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	alpha := fx.CreateTeam(ctx, "Alpha")
	beta := fx.CreateTeam(ctx, "Beta")
	fx.CreateTask(ctx, "a1", alpha.ID, primitive.NilObjectID)
	fx.CreateTask(ctx, "a2", alpha.ID, primitive.NilObjectID)
	fx.CreateTask(ctx, "b1", beta.ID, primitive.NilObjectID)

	router := newRouter(t, analytics.NewHandler(db, uierrors.NewErrorLogger(nil), zap.NewNop()))
	lead := testutil.TeamLeadIdentity(alpha.ID, "Alpha")

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/"), lead))
	rec.AssertStatus(t, http.StatusOK)
	var s analytics.Summary
	rec.DecodeJSON(t, &s)
	if s.Total != 2 || len(s.Teams) != 1 || s.Teams[0].TeamName != "Alpha" {
		t.Errorf("lead summary = %+v", s)
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/tasks.csv"), testutil.AdminIdentity()))
	rec.AssertStatus(t, http.StatusOK)
	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("csv rows = %d, want header + 3", len(rows))
	}
	if rows[0][1] != "Title" {
		t.Errorf("header = %v", rows[0])
	}
}
