package logisticsstore

import (
	"context"
	"errors"
	"time"

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

// Collection is the MongoDB collection holding logistics items.
const Collection = "logistics"

var (
	ErrNotFound         = errors.New("logistics item not found")
	ErrNameRequired     = errors.New("item name is required")
	ErrBadStatus        = errors.New(`status must be "needed"|"ordered"|"delivered"`)
	ErrNegativeQuantity = errors.New("quantity cannot be negative")
)

var validStatuses = map[string]bool{
	models.LogisticsNeeded:    true,
	models.LogisticsOrdered:   true,
	models.LogisticsDelivered: true,
}

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

// List returns items by status then name, optionally narrowed to one status.
func (s *Store) List(ctx context.Context, status string) ([]models.LogisticsItem, error) {
	q := bson.M{}
	if status = normalize.Filter(status); status != "" {
		q["status"] = normalize.Status(status)
	}
	opts := options.Find().SetSort(bson.D{{Key: "status", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.LogisticsItem{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.LogisticsItem, error) {
	var it models.LogisticsItem
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&it); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.LogisticsItem{}, ErrNotFound
		}
		return models.LogisticsItem{}, err
	}
	return it, nil
}

func clean(it models.LogisticsItem) (models.LogisticsItem, error) {
	it.Name = normalize.Name(htmlsanitize.Text(it.Name))
	if it.Name == "" {
		return it, ErrNameRequired
	}
	it.NameCI = text.Fold(it.Name)
	it.Category = normalize.Name(htmlsanitize.Text(it.Category))
	it.Location = normalize.Name(htmlsanitize.Text(it.Location))
	it.Notes = htmlsanitize.Text(it.Notes)
	if it.Quantity < 0 {
		return it, ErrNegativeQuantity
	}
	it.Status = normalize.Status(it.Status)
	if it.Status == "" {
		it.Status = models.LogisticsNeeded
	}
	if !validStatuses[it.Status] {
		return it, ErrBadStatus
	}
	if it.OwnerID != nil && it.OwnerID.IsZero() {
		it.OwnerID = nil
	}
	return it, nil
}

func (s *Store) Create(ctx context.Context, it models.LogisticsItem) (models.LogisticsItem, error) {
	it, err := clean(it)
	if err != nil {
		return models.LogisticsItem{}, err
	}
	it.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	it.CreatedAt = now
	it.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, it); err != nil {
		return models.LogisticsItem{}, err
	}
	s.publish(realtime.OpInsert, it.ID)
	return it, nil
}

func (s *Store) Update(ctx context.Context, it models.LogisticsItem) (models.LogisticsItem, error) {
	it, err := clean(it)
	if err != nil {
		return models.LogisticsItem{}, err
	}
	set := bson.M{
		"name":       it.Name,
		"name_ci":    it.NameCI,
		"category":   it.Category,
		"quantity":   it.Quantity,
		"location":   it.Location,
		"status":     it.Status,
		"notes":      it.Notes,
		"updated_at": time.Now().UTC(),
	}
	doc := bson.M{"$set": set}
	if it.OwnerID != nil {
		set["owner_id"] = *it.OwnerID
	} else {
		doc["$unset"] = bson.M{"owner_id": ""}
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": it.ID}, doc)
	if err != nil {
		return models.LogisticsItem{}, err
	}
	if res.MatchedCount == 0 {
		return models.LogisticsItem{}, ErrNotFound
	}
	s.publish(realtime.OpUpdate, it.ID)
	return s.GetByID(ctx, it.ID)
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
