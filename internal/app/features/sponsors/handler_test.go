package sponsors_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	"github.com/nexera-events/symphony/internal/app/features/sponsors"
	"github.com/nexera-events/symphony/internal/app/system/auditlog"
	"github.com/nexera-events/symphony/internal/app/system/auth"
	"github.com/nexera-events/symphony/internal/app/system/indexes"
	"github.com/nexera-events/symphony/internal/domain/models"
	"github.com/nexera-events/symphony/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testKey = "test-session-key-for-testing-only-0123456789"

func newRouter(t *testing.T, h *sponsors.Handler) chi.Router {
	t.Helper()
	sm, err := auth.NewSessionManager(testKey, "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sponsors.Routes(h, sm)
}

func serve(router chi.Router, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMutations_OtherLeadsDenied(t *testing.T) {
	h := &sponsors.Handler{
		Log:      zap.NewNop(),
		ErrLog:   uierrors.NewErrorLogger(nil),
		AuditLog: auditlog.New(nil, zap.NewNop(), auditlog.Config{}),
	}
	router := newRouter(t, h)
	target := "/" + primitive.NewObjectID().Hex()

	for _, tc := range []struct {
		name string
		req  func() *http.Request
	}{
		{"logistics lead", func() *http.Request {
			return testutil.WithUser(testutil.JSONRequest(http.MethodPost, "/", map[string]string{"name": "Acme"}),
				testutil.TeamLeadIdentity(primitive.NewObjectID(), models.TeamLogistics))
		}},
		{"volunteer on sponsorship", func() *http.Request {
			vol := testutil.VolunteerIdentity(primitive.NewObjectID())
			vol.TeamName = models.TeamSponsorship
			return testutil.WithUser(testutil.JSONRequest(http.MethodPut, target, map[string]string{"name": "Acme"}), vol)
		}},
		{"lead without team name", func() *http.Request {
			return testutil.WithUser(testutil.NewRequest(http.MethodDelete, target),
				testutil.TeamLeadIdentity(primitive.NewObjectID(), ""))
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			serve(router, tc.req()).AssertStatus(t, http.StatusForbidden)
		})
	}
}

func TestSponsorshipLeadManages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, nil); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	h := sponsors.NewHandler(db, nil, uierrors.NewErrorLogger(nil), auditlog.New(nil, zap.NewNop(), auditlog.Config{}), zap.NewNop())
	router := newRouter(t, h)
	lead := testutil.TeamLeadIdentity(primitive.NewObjectID(), models.TeamSponsorship)

	rec := serve(router, testutil.WithUser(testutil.JSONRequest(http.MethodPost, "/", map[string]any{
		"name":   "Acme Corp",
		"tier":   "Gold",
		"amount": 500000,
		"status": "committed",
	}), lead))
	rec.AssertStatus(t, http.StatusCreated)
	var sp models.Sponsor
	rec.DecodeJSON(t, &sp)
	if sp.Tier != models.SponsorTierGold || sp.Status != models.SponsorCommitted {
		t.Fatalf("created sponsor = %+v", sp)
	}

	dup := serve(router, testutil.WithUser(testutil.JSONRequest(http.MethodPost, "/", map[string]any{
		"name": "acme corp",
		"tier": "silver",
	}), lead))
	dup.AssertStatus(t, http.StatusConflict)

	badTier := serve(router, testutil.WithUser(testutil.JSONRequest(http.MethodPut, "/"+sp.ID.Hex(), map[string]any{
		"tier": "diamond",
	}), lead))
	badTier.AssertStatus(t, http.StatusBadRequest)

	vol := testutil.VolunteerIdentity(primitive.NewObjectID())
	list := serve(router, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/?tier=gold"), vol))
	list.AssertStatus(t, http.StatusOK)
	var body struct {
		Sponsors       []models.Sponsor `json:"sponsors"`
		TotalCommitted int64            `json:"total_committed"`
		CanManage      bool             `json:"can_manage"`
	}
	list.DecodeJSON(t, &body)
	if len(body.Sponsors) != 1 || body.TotalCommitted != 500000 || body.CanManage {
		t.Errorf("list = %+v", body)
	}

	serve(router, testutil.WithUser(testutil.NewRequest(http.MethodDelete, "/"+sp.ID.Hex()), lead)).
		AssertStatus(t, http.StatusNoContent)
}
