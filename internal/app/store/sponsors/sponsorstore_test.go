package sponsorstore_test

import (
	"errors"
	"testing"

	sponsorstore "github.com/nexera-events/symphony/internal/app/store/sponsors"
	"github.com/nexera-events/symphony/internal/app/system/indexes"
	"github.com/nexera-events/symphony/internal/domain/models"
	"github.com/nexera-events/symphony/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sponsorstore.New(db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sp, err := store.Create(ctx, models.Sponsor{
		Name:         "Acme Corp",
		Tier:         " Gold ",
		ContactEmail: " Jo@Acme.COM ",
		Amount:       500000,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sp.Tier != models.SponsorTierGold {
		t.Errorf("Tier = %q", sp.Tier)
	}
	if sp.Status != models.SponsorProspect {
		t.Errorf("Status = %q, want prospect default", sp.Status)
	}
	if sp.ContactEmail != "jo@acme.com" {
		t.Errorf("ContactEmail = %q", sp.ContactEmail)
	}
}

func TestStore_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sponsorstore.New(db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name string
		sp   models.Sponsor
		want error
	}{
		{"no name", models.Sponsor{Tier: "gold"}, sponsorstore.ErrNameRequired},
		{"bad tier", models.Sponsor{Name: "x", Tier: "diamond"}, sponsorstore.ErrBadTier},
		{"bad status", models.Sponsor{Name: "x", Tier: "gold", Status: "maybe"}, sponsorstore.ErrBadStatus},
		{"negative", models.Sponsor{Name: "x", Tier: "gold", Amount: -1}, sponsorstore.ErrNegativeAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Create(ctx, tt.sp); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, nil); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := sponsorstore.New(db, nil)

	if _, err := store.Create(ctx, models.Sponsor{Name: "Acme", Tier: "gold"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Sponsor{Name: "ACME", Tier: "silver"}); !errors.Is(err, sponsorstore.ErrDuplicateName) {
		t.Errorf("err = %v, want ErrDuplicateName", err)
	}
}

func TestStore_ListByTier(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sponsorstore.New(db, nil)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateSponsor(ctx, "Zeta", models.SponsorTierGold)
	fixtures.CreateSponsor(ctx, "alpha", models.SponsorTierGold)
	fixtures.CreateSponsor(ctx, "Beta", models.SponsorTierBronze)

	gold, err := store.List(ctx, "Gold")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(gold) != 2 || gold[0].Name != "alpha" || gold[1].Name != "Zeta" {
		t.Errorf("gold = %+v", gold)
	}
	all, err := store.List(ctx, "all")
	if err != nil {
		t.Fatalf("List all failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
}

func TestTotalCommitted(t *testing.T) {
	sponsors := []models.Sponsor{
		{Amount: 100, Status: models.SponsorProspect},
		{Amount: 200, Status: models.SponsorCommitted},
		{Amount: 300, Status: models.SponsorPaid},
	}
	if got := sponsorstore.TotalCommitted(sponsors); got != 500 {
		t.Errorf("TotalCommitted = %d, want 500", got)
	}
}
