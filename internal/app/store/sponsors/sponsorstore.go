package sponsorstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/nexera-events/symphony/internal/app/system/htmlsanitize"
	"github.com/nexera-events/symphony/internal/app/system/normalize"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection holding sponsors.
const Collection = "sponsors"

var (
	ErrNotFound       = errors.New("sponsor not found")
	ErrDuplicateName  = errors.New("a sponsor with this name already exists")
	ErrNameRequired   = errors.New("sponsor name is required")
	ErrBadTier        = errors.New(`tier must be "platinum"|"gold"|"silver"|"bronze"`)
	ErrBadStatus      = errors.New(`status must be "prospect"|"committed"|"paid"`)
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

var (
	validTiers = map[string]bool{
		models.SponsorTierPlatinum: true,
		models.SponsorTierGold:     true,
		models.SponsorTierSilver:   true,
		models.SponsorTierBronze:   true,
	}
	validStatuses = map[string]bool{
		models.SponsorProspect:  true,
		models.SponsorCommitted: true,
		models.SponsorPaid:      true,
	}
)

type Store struct {
	c   *mongo.Collection
	hub *realtime.Hub
}

func New(db *mongo.Database, hub *realtime.Hub) *Store {
	return &Store{c: db.Collection(Collection), hub: hub}
}

func (s *Store) publish(op string, id primitive.ObjectID) {
	s.hub.Publish(realtime.Change{Collection: Collection, Op: op, ID: id})
}

// List returns sponsors by name, optionally narrowed to one tier.
func (s *Store) List(ctx context.Context, tier string) ([]models.Sponsor, error) {
	q := bson.M{}
	if tier = normalize.Filter(tier); tier != "" {
		q["tier"] = normalize.Status(tier)
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Sponsor{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Sponsor, error) {
	var sp models.Sponsor
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Sponsor{}, ErrNotFound
		}
		return models.Sponsor{}, err
	}
	return sp, nil
}

func clean(sp models.Sponsor) (models.Sponsor, error) {
	sp.Name = normalize.Name(htmlsanitize.Text(sp.Name))
	if sp.Name == "" {
		return sp, ErrNameRequired
	}
	sp.NameCI = text.Fold(sp.Name)
	sp.Tier = normalize.Status(sp.Tier)
	if !validTiers[sp.Tier] {
		return sp, ErrBadTier
	}
	sp.Status = normalize.Status(sp.Status)
	if sp.Status == "" {
		sp.Status = models.SponsorProspect
	}
	if !validStatuses[sp.Status] {
		return sp, ErrBadStatus
	}
	if sp.Amount < 0 {
		return sp, ErrNegativeAmount
	}
	sp.ContactName = normalize.Name(htmlsanitize.Text(sp.ContactName))
	sp.ContactEmail = normalize.Email(sp.ContactEmail)
	sp.Notes = htmlsanitize.Text(sp.Notes)
	return sp, nil
}

func (s *Store) Create(ctx context.Context, sp models.Sponsor) (models.Sponsor, error) {
	sp, err := clean(sp)
	if err != nil {
		return models.Sponsor{}, err
	}
	sp.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	sp.CreatedAt = now
	sp.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, sp); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Sponsor{}, ErrDuplicateName
		}
		return models.Sponsor{}, err
	}
	s.publish(realtime.OpInsert, sp.ID)
	return sp, nil
}

func (s *Store) Update(ctx context.Context, sp models.Sponsor) (models.Sponsor, error) {
	sp, err := clean(sp)
	if err != nil {
		return models.Sponsor{}, err
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": sp.ID}, bson.M{"$set": bson.M{
		"name":          sp.Name,
		"name_ci":       sp.NameCI,
		"tier":          sp.Tier,
		"contact_name":  sp.ContactName,
		"contact_email": sp.ContactEmail,
		"amount":        sp.Amount,
		"status":        sp.Status,
		"notes":         sp.Notes,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Sponsor{}, ErrDuplicateName
		}
		return models.Sponsor{}, err
	}
	if res.MatchedCount == 0 {
		return models.Sponsor{}, ErrNotFound
	}
	s.publish(realtime.OpUpdate, sp.ID)
	return s.GetByID(ctx, sp.ID)
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	s.publish(realtime.OpDelete, id)
	return nil
}

// TotalCommitted sums Amount over committed and paid sponsors.
func TotalCommitted(sponsors []models.Sponsor) int64 {
	var total int64
	for _, sp := range sponsors {
		if sp.Status == models.SponsorCommitted || sp.Status == models.SponsorPaid {
			total += sp.Amount
		}
	}
	return total
}
