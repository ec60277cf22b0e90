package eventstore

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

// Collection is the MongoDB collection holding events.
const Collection = "events"

var (
	ErrNotFound      = errors.New("event not found")
	ErrTitleRequired = errors.New("event title is required")
	ErrStartRequired = errors.New("event start time is required")
	ErrEndsBefore    = errors.New("event cannot end before it starts")
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

// List returns events in start order. With after set, only events that
// start at or after it are returned.
func (s *Store) List(ctx context.Context, after *time.Time) ([]models.Event, error) {
	q := bson.M{}
	if after != nil {
		q["starts_at"] = bson.M{"$gte": after.UTC()}
	}
	opts := options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, err
	}
	return e, nil
}

func clean(e models.Event) (models.Event, error) {
	e.Title = normalize.Name(htmlsanitize.Text(e.Title))
	if e.Title == "" {
		return e, ErrTitleRequired
	}
	e.TitleCI = text.Fold(e.Title)
	e.Description = htmlsanitize.Text(e.Description)
	e.Location = normalize.Name(htmlsanitize.Text(e.Location))
	if e.StartsAt.IsZero() {
		return e, ErrStartRequired
	}
	e.StartsAt = e.StartsAt.UTC()
	if e.EndsAt != nil {
		end := e.EndsAt.UTC()
		if end.Before(e.StartsAt) {
			return e, ErrEndsBefore
		}
		e.EndsAt = &end
	}
	return e, nil
}

func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e, err := clean(e)
	if err != nil {
		return models.Event{}, err
	}
	e.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	s.publish(realtime.OpInsert, e.ID)
	return e, nil
}

// Update rewrites the editable fields of e. CreatedBy and CreatedAt are kept.
func (s *Store) Update(ctx context.Context, e models.Event) (models.Event, error) {
	e, err := clean(e)
	if err != nil {
		return models.Event{}, err
	}
	set := bson.M{
		"title":       e.Title,
		"title_ci":    e.TitleCI,
		"description": e.Description,
		"location":    e.Location,
		"starts_at":   e.StartsAt,
		"updated_at":  time.Now().UTC(),
	}
	doc := bson.M{"$set": set}
	if e.EndsAt != nil {
		set["ends_at"] = *e.EndsAt
	} else {
		doc["$unset"] = bson.M{"ends_at": ""}
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": e.ID}, doc)
	if err != nil {
		return models.Event{}, err
	}
	if res.MatchedCount == 0 {
		return models.Event{}, ErrNotFound
	}
	s.publish(realtime.OpUpdate, e.ID)
	return s.GetByID(ctx, e.ID)
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
