package logisticsstore_test

import (
	"errors"
	"testing"
	"time"

	logisticsstore "github.com/nexera-events/symphony/internal/app/store/logistics"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"github.com/nexera-events/symphony/internal/domain/models"
	"github.com/nexera-events/symphony/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestStore_Create_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := logisticsstore.New(db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	it, err := store.Create(ctx, models.LogisticsItem{Name: "Folding chairs", Quantity: 120})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if it.Status != models.LogisticsNeeded {
		t.Errorf("Status = %q, want needed", it.Status)
	}

	if _, err := store.Create(ctx, models.LogisticsItem{Name: "x", Quantity: -1}); !errors.Is(err, logisticsstore.ErrNegativeQuantity) {
		t.Errorf("err = %v, want ErrNegativeQuantity", err)
	}
	if _, err := store.Create(ctx, models.LogisticsItem{Name: "x", Status: "lost"}); !errors.Is(err, logisticsstore.ErrBadStatus) {
		t.Errorf("err = %v, want ErrBadStatus", err)
	}
	if _, err := store.Create(ctx, models.LogisticsItem{Name: "  "}); !errors.Is(err, logisticsstore.ErrNameRequired) {
		t.Errorf("err = %v, want ErrNameRequired", err)
	}
}

func TestStore_Update_OwnerAndPublish(t *testing.T) {
	db := testutil.SetupTestDB(t)
	hub := realtime.NewHub(zap.NewNop())
	defer hub.Close()
	store := logisticsstore.New(db, hub)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	it, err := store.Create(ctx, models.LogisticsItem{Name: "Projector", Quantity: 2})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sub := hub.Subscribe(4)
	owner := primitive.NewObjectID()
	it.OwnerID = &owner
	it.Status = "Ordered"
	updated, err := store.Update(ctx, it)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != models.LogisticsOrdered || updated.OwnerID == nil || *updated.OwnerID != owner {
		t.Errorf("updated = %+v", updated)
	}

	select {
	case ch := <-sub:
		if ch.Collection != logisticsstore.Collection || ch.Op != realtime.OpUpdate || ch.ID != it.ID {
			t.Errorf("change = %+v", ch)
		}
	case <-time.After(time.Second):
		t.Fatal("no change published")
	}

	updated.OwnerID = nil
	cleared, err := store.Update(ctx, updated)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if cleared.OwnerID != nil {
		t.Errorf("OwnerID = %v, want cleared", cleared.OwnerID)
	}
}

func TestStore_ListByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := logisticsstore.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateLogisticsItem(ctx, "Badges", 300)
	fixtures.CreateLogisticsItem(ctx, "Tables", 20)

	needed, err := store.List(ctx, "needed")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(needed) != 2 || needed[0].Name != "Badges" {
		t.Errorf("needed = %+v", needed)
	}
	delivered, err := store.List(ctx, "delivered")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(delivered) != 0 {
		t.Errorf("delivered = %+v, want none", delivered)
	}
}
