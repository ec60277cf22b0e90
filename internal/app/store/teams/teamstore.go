package teamstore

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

// Collection is the MongoDB collection holding teams.
const Collection = "teams"

var (
	ErrNotFound      = errors.New("team not found")
	ErrDuplicateName = errors.New("a team with this name already exists")
	ErrNameRequired  = errors.New("team name is required")
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

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Team{}, ErrNotFound
		}
		return models.Team{}, err
	}
	return t, nil
}

// List returns every team ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Team, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Team{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Names maps team ids to names, for labelling tasks and users.
func (s *Store) Names(ctx context.Context) (map[primitive.ObjectID]string, error) {
	teams, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]string, len(teams))
	for _, t := range teams {
		out[t.ID] = t.Name
	}
	return out, nil
}

// Create inserts a team. The name is whitespace-normalized and must be
// unique ignoring case and diacritics.
func (s *Store) Create(ctx context.Context, t models.Team) (models.Team, error) {
	t.ID = primitive.NewObjectID()
	t.Name = normalize.Name(htmlsanitize.Text(t.Name))
	if t.Name == "" {
		return models.Team{}, ErrNameRequired
	}
	t.NameCI = text.Fold(t.Name)
	t.Icon = htmlsanitize.Text(t.Icon)
	if t.LeadID != nil && t.LeadID.IsZero() {
		t.LeadID = nil
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Team{}, ErrDuplicateName
		}
		return models.Team{}, err
	}
	s.publish(realtime.OpInsert, t.ID)
	return t, nil
}

// Update holds changeable team fields; nil means unchanged. ClearLead
// removes the lead and wins over LeadID.
type Update struct {
	Name      *string
	Icon      *string
	LeadID    *primitive.ObjectID
	ClearLead bool
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.Team, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if upd.Name != nil {
		name := normalize.Name(htmlsanitize.Text(*upd.Name))
		if name == "" {
			return models.Team{}, ErrNameRequired
		}
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if upd.Icon != nil {
		set["icon"] = htmlsanitize.Text(*upd.Icon)
	}
	switch {
	case upd.ClearLead:
		unset["lead_id"] = ""
	case upd.LeadID != nil:
		set["lead_id"] = *upd.LeadID
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Team{}, ErrDuplicateName
		}
		return models.Team{}, err
	}
	if res.MatchedCount == 0 {
		return models.Team{}, ErrNotFound
	}
	s.publish(realtime.OpUpdate, id)
	return s.GetByID(ctx, id)
}

// Delete removes a team. Callers detach its users and tasks.
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

// GetByName finds a team by folded name.
func (s *Store) GetByName(ctx context.Context, name string) (models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"name_ci": text.Fold(normalize.Name(name))}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Team{}, ErrNotFound
		}
		return models.Team{}, err
	}
	return t, nil
}
