// Package taskstore persists tasks. It does no authorization: callers run
// the access policy against the stored record before every write.
package taskstore

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

// Collection is the MongoDB collection holding tasks.
const Collection = "tasks"

var (
	ErrNotFound      = errors.New("task not found")
	ErrTitleRequired = errors.New("task title is required")
	ErrBadStatus     = errors.New(`status must be "To Do"|"In Progress"|"Done"`)
	ErrBadPriority   = errors.New(`priority must be "Low"|"Medium"|"High"`)

	// ErrConflict means the task's team or assignee changed after the
	// caller's permission was checked; the write did not happen.
	ErrConflict = errors.New("task changed since it was read")
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

// List returns every task in creation order. Visibility filtering is the
// caller's job; the order here is the order the board shows.
func (s *Store) List(ctx context.Context) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Task{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, err
	}
	return t, nil
}

// clean normalizes the editable fields and validates the task.
func clean(t models.Task) (models.Task, error) {
	t.Title = normalize.Name(htmlsanitize.Text(t.Title))
	if t.Title == "" {
		return t, ErrTitleRequired
	}
	t.TitleCI = text.Fold(t.Title)
	t.Description = htmlsanitize.Text(t.Description)
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if _, ok := models.ParseTaskPriority(string(t.Priority)); !ok {
		return t, ErrBadPriority
	}
	if t.DueDate != nil {
		d := t.DueDate.UTC()
		t.DueDate = &d
	}
	return t, nil
}

// Create inserts a new task. Status always starts at To Do and priority
// defaults to Medium.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	t, err := clean(t)
	if err != nil {
		return models.Task{}, err
	}
	t.ID = primitive.NewObjectID()
	t.Status = models.TaskToDo
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	s.publish(realtime.OpInsert, t.ID)
	return t, nil
}

// guard matches checked's document only while its team and assignee are
// still the ones an access decision was made against.
func guard(checked models.Task) bson.M {
	f := bson.M{"_id": checked.ID}
	matchRef(f, "team_id", checked.TeamID)
	matchRef(f, "assignee_id", checked.AssigneeID)
	return f
}

func matchRef(f bson.M, field string, id primitive.ObjectID) {
	if id.IsZero() {
		f[field] = nil // missing or null
		return
	}
	f[field] = id
}

// missOrConflict explains a guarded write that matched nothing.
func (s *Store) missOrConflict(ctx context.Context, id primitive.ObjectID) error {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

// Update writes the editable fields of t (title, description, assignee,
// team, priority, due date). Status and creation time are preserved.
// checked is the stored task the caller was authorized against; if its
// team or assignee has changed since, nothing is written and ErrConflict
// is returned.
func (s *Store) Update(ctx context.Context, checked, t models.Task) (models.Task, error) {
	t, err := clean(t)
	if err != nil {
		return models.Task{}, err
	}

	set := bson.M{
		"title":       t.Title,
		"title_ci":    t.TitleCI,
		"description": t.Description,
		"priority":    t.Priority,
		"updated_at":  time.Now().UTC(),
	}
	unset := bson.M{}
	setRef(set, unset, "assignee_id", t.AssigneeID)
	setRef(set, unset, "team_id", t.TeamID)
	if t.DueDate != nil {
		set["due_date"] = *t.DueDate
	} else {
		unset["due_date"] = ""
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	t.ID = checked.ID
	res, err := s.c.UpdateOne(ctx, guard(checked), doc)
	if err != nil {
		return models.Task{}, err
	}
	if res.MatchedCount == 0 {
		return models.Task{}, s.missOrConflict(ctx, t.ID)
	}
	s.publish(realtime.OpUpdate, t.ID)
	return s.GetByID(ctx, t.ID)
}

func setRef(set, unset bson.M, field string, id primitive.ObjectID) {
	if id.IsZero() {
		unset[field] = ""
		return
	}
	set[field] = id
}

// UpdateStatus moves the task checked to status, under the same guard as
// Update.
func (s *Store) UpdateStatus(ctx context.Context, checked models.Task, status models.TaskStatus) (models.Task, error) {
	if _, ok := models.ParseTaskStatus(string(status)); !ok {
		return models.Task{}, ErrBadStatus
	}
	id := checked.ID
	res, err := s.c.UpdateOne(ctx, guard(checked), bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return models.Task{}, err
	}
	if res.MatchedCount == 0 {
		return models.Task{}, s.missOrConflict(ctx, id)
	}
	s.publish(realtime.OpUpdate, id)
	return s.GetByID(ctx, id)
}

// Delete removes the task checked, under the same guard as Update.
func (s *Store) Delete(ctx context.Context, checked models.Task) error {
	res, err := s.c.DeleteOne(ctx, guard(checked))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return s.missOrConflict(ctx, checked.ID)
	}
	s.publish(realtime.OpDelete, checked.ID)
	return nil
}

// DetachTeam clears the team on every task owned by teamID. Such tasks are
// then manageable by admins only.
func (s *Store) DetachTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	return s.unsetRef(ctx, "team_id", teamID)
}

// Unassign clears the assignee on every task assigned to userID.
func (s *Store) Unassign(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.unsetRef(ctx, "assignee_id", userID)
}

func (s *Store) unsetRef(ctx context.Context, field string, id primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{field: id},
		bson.M{"$unset": bson.M{field: ""}, "$set": bson.M{"updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	if res.ModifiedCount > 0 {
		s.publish(realtime.OpUpdate, primitive.NilObjectID)
	}
	return res.ModifiedCount, nil
}

// CountByStatus tallies tasks per status. Every status is present in the
// result, zero if unused.
func CountByStatus(tasks []models.Task) map[models.TaskStatus]int {
	out := make(map[models.TaskStatus]int, len(models.TaskStatuses))
	for _, st := range models.TaskStatuses {
		out[st] = 0
	}
	for _, t := range tasks {
		out[t.Status]++
	}
	return out
}
