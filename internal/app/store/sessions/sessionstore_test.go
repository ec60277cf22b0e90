package sessionstore_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sessionstore "github.com/nexera-events/symphony/internal/app/store/sessions"
	"github.com/nexera-events/symphony/internal/app/system/auth"
	"github.com/nexera-events/symphony/internal/app/system/identity"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"github.com/nexera-events/symphony/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestStore_StartEndActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	hub := realtime.NewHub(nil)
	defer hub.Close()
	sub := hub.Subscribe(4)
	store := sessionstore.New(db, hub)

	userID := primitive.NewObjectID()
	sid, err := store.Start(ctx, userID, "10.0.0.1:5000", "test-agent")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if ok, err := store.Active(ctx, sid, userID); err != nil || !ok {
		t.Fatalf("Active after Start = %v, %v; want true", ok, err)
	}
	if ok, _ := store.Active(ctx, sid, primitive.NewObjectID()); ok {
		t.Error("session must not be active for another user")
	}

	if err := store.End(ctx, sid, auth.EndLogout); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if ok, _ := store.Active(ctx, sid, userID); ok {
		t.Error("session still active after End")
	}

	var doc bson.M
	if err := db.Collection(sessionstore.Collection).FindOne(ctx, bson.M{"_id": sid}).Decode(&doc); err != nil {
		t.Fatalf("find session: %v", err)
	}
	if doc["end_reason"] != auth.EndLogout || doc["logout_at"] == nil {
		t.Errorf("ended session = %v, want logout_at and end_reason logout", doc)
	}

	select {
	case c := <-sub:
		if c.Collection != realtime.Sessions || c.ID != sid {
			t.Errorf("published %+v, want session change for %s", c, sid.Hex())
		}
	default:
		t.Error("End did not publish a session change")
	}

	// Ending twice is a no-op and publishes nothing.
	if err := store.End(ctx, sid, auth.EndLogout); err != nil {
		t.Errorf("second End: %v", err)
	}
	select {
	case c := <-sub:
		t.Errorf("second End published %+v", c)
	default:
	}
}

func TestStore_EndAllForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := sessionstore.New(db, nil)

	userID := primitive.NewObjectID()
	other := primitive.NewObjectID()
	a, _ := store.Start(ctx, userID, "", "")
	b, _ := store.Start(ctx, userID, "", "")
	keep, _ := store.Start(ctx, other, "", "")

	n, err := store.EndAllForUser(ctx, userID, sessionstore.EndDisabled)
	if err != nil {
		t.Fatalf("EndAllForUser failed: %v", err)
	}
	if n != 2 {
		t.Errorf("ended = %d, want 2", n)
	}
	for _, sid := range []primitive.ObjectID{a, b} {
		if ok, _ := store.Active(ctx, sid, userID); ok {
			t.Errorf("session %s still active", sid.Hex())
		}
	}
	if ok, _ := store.Active(ctx, keep, other); !ok {
		t.Error("another user's session was ended")
	}
}

func TestStore_Cleanup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := sessionstore.New(db, nil)
	coll := db.Collection(sessionstore.Collection)

	userID := primitive.NewObjectID()
	old := time.Now().UTC().Add(-48 * time.Hour)
	staleID := primitive.NewObjectID()
	endedID := primitive.NewObjectID()
	if _, err := coll.InsertMany(ctx, []interface{}{
		sessionstore.Session{ID: staleID, UserID: userID, LoginAt: old},
		sessionstore.Session{ID: endedID, UserID: userID, LoginAt: old, LogoutAt: &old, EndReason: auth.EndLogout},
	}); err != nil {
		t.Fatalf("seed sessions: %v", err)
	}
	fresh, _ := store.Start(ctx, userID, "", "")

	expired, err := store.ExpireStale(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ExpireStale failed: %v", err)
	}
	if expired != 1 {
		t.Errorf("expired = %d, want 1", expired)
	}
	if ok, _ := store.Active(ctx, staleID, userID); ok {
		t.Error("stale session still active")
	}
	if ok, _ := store.Active(ctx, fresh, userID); !ok {
		t.Error("fresh session was expired")
	}

	deleted, err := store.DeleteEndedBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteEndedBefore failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1 (only the session that ended two days ago)", deleted)
	}
}

type staticFetcher struct{ id identity.Identity }

func (f staticFetcher) FetchIdentity(context.Context, string) (identity.Identity, bool) {
	return f.id, true
}

func TestStore_LogoutRevokesCookieAcrossManagers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db, nil)
	userID := primitive.NewObjectID()
	admin := identity.Identity{ID: userID, Role: identity.RoleAdmin}

	// Two instances sharing one key and one sessions collection.
	newManager := func() *auth.SessionManager {
		sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, zap.NewNop())
		if err != nil {
			t.Fatalf("NewSessionManager: %v", err)
		}
		sm.SetUserFetcher(staticFetcher{id: admin})
		sm.SetSessionTracker(store)
		return sm
	}
	first, second := newManager(), newManager()

	rec := httptest.NewRecorder()
	if err := first.Login(rec, httptest.NewRequest("POST", "/login", nil), userID); err != nil {
		t.Fatalf("Login: %v", err)
	}
	cookies := rec.Result().Cookies()
	withCookies := func(method string) *http.Request {
		req := httptest.NewRequest(method, "/", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		return req
	}

	if !second.ResolveIdentity(withCookies("GET")).Present() {
		t.Fatal("cookie from one instance should resolve on another")
	}
	if err := first.Logout(httptest.NewRecorder(), withCookies("POST")); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if got := second.ResolveIdentity(withCookies("GET")); got.Present() {
		t.Errorf("replayed cookie resolved %+v on the other instance, want None", got)
	}
}
