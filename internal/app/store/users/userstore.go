package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/nexera-events/symphony/internal/app/system/identity"
	"github.com/nexera-events/symphony/internal/app/system/normalize"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// Collection is the MongoDB collection holding users.
const Collection = "users"

// MinPasswordLength is the shortest password Create and Update accept.
const MinPasswordLength = 8

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrBadRole is returned for a role outside admin|team_lead|volunteer.
	ErrBadRole = errors.New(`role must be "admin"|"team_lead"|"volunteer"`)
	// ErrBadStatus is returned for a status outside active|disabled.
	ErrBadStatus = errors.New(`status must be "active"|"disabled"`)
	// ErrBadAuthMethod is returned for an unsupported sign-in method.
	ErrBadAuthMethod = errors.New(`auth_method must be "password"|"google"`)
	// ErrWeakPassword is returned when a password user has a short password.
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	// ErrMissingFields is returned when name or email is empty.
	ErrMissingFields = errors.New("full_name and email are required")
)

// listProjection keeps password hashes out of list results.
var listProjection = bson.M{"password_hash": 0}

type Store struct {
	c   *mongo.Collection
	hub *realtime.Hub
}

// New returns a Store. hub may be nil; when set, successful writes are
// published to it.
func New(db *mongo.Database, hub *realtime.Hub) *Store {
	return &Store{c: db.Collection(Collection), hub: hub}
}

func (s *Store) publish(op string, id primitive.ObjectID) {
	s.hub.Publish(realtime.Change{Collection: Collection, Op: op, ID: id})
}

// HashPassword returns the bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hash. An empty hash never matches.
func CheckPassword(hash, pw string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail looks up a user by case- and diacritic-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// ListFilter narrows List. Zero fields are ignored.
type ListFilter struct {
	Role   string
	Status string
	TeamID *primitive.ObjectID
}

// List returns users sorted by name, without password hashes.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.User, error) {
	q := bson.M{}
	if f.Role != "" {
		q["role"] = normalize.Role(f.Role)
	}
	if f.Status != "" {
		q["status"] = normalize.Status(f.Status)
	}
	if f.TeamID != nil {
		q["team_id"] = *f.TeamID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(listProjection)

	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func validate(u models.User) error {
	if u.FullName == "" || u.Email == "" {
		return ErrMissingFields
	}
	if !identity.ParseRole(u.Role).Valid() {
		return ErrBadRole
	}
	if u.Status != models.UserStatusActive && u.Status != models.UserStatusDisabled {
		return ErrBadStatus
	}
	if !models.IsValidAuthMethod(u.AuthMethod) {
		return ErrBadAuthMethod
	}
	return nil
}

// Create inserts a new user after normalizing & validating fields. A
// password user must supply password; a Google user's password is ignored.
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.EmailCI = text.Fold(u.Email)
	u.Role = normalize.Role(u.Role)
	u.Status = normalize.Status(u.Status)
	if u.Status == "" {
		u.Status = models.UserStatusActive
	}
	u.AuthMethod = normalize.AuthMethod(u.AuthMethod)
	if u.AuthMethod == "" {
		u.AuthMethod = models.AuthMethodPassword
	}
	if u.TeamID != nil && u.TeamID.IsZero() {
		u.TeamID = nil
	}
	if err := validate(u); err != nil {
		return models.User{}, err
	}

	u.PasswordHash = ""
	if u.AuthMethod == models.AuthMethodPassword {
		if len(password) < MinPasswordLength {
			return models.User{}, ErrWeakPassword
		}
		hash, err := HashPassword(password)
		if err != nil {
			return models.User{}, err
		}
		u.PasswordHash = hash
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	s.publish(realtime.OpInsert, u.ID)
	return u, nil
}

// Update holds the fields that can change on a user. Nil fields are left
// as they are. ClearTeam removes the team affiliation and wins over TeamID.
type Update struct {
	FullName   *string
	Email      *string
	Role       *string
	Status     *string
	AuthMethod *string
	TeamID     *primitive.ObjectID
	ClearTeam  bool
	Password   *string
}

// Update applies upd to the user and returns the stored result along with
// the names of the fields that were set.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (models.User, []string, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return models.User{}, nil, err
	}

	var changed []string
	next := cur
	if upd.FullName != nil {
		next.FullName = normalize.Name(*upd.FullName)
		next.FullNameCI = text.Fold(next.FullName)
		changed = append(changed, "full_name")
	}
	if upd.Email != nil {
		next.Email = normalize.Email(*upd.Email)
		next.EmailCI = text.Fold(next.Email)
		changed = append(changed, "email")
	}
	if upd.Role != nil {
		next.Role = normalize.Role(*upd.Role)
		changed = append(changed, "role")
	}
	if upd.Status != nil {
		next.Status = normalize.Status(*upd.Status)
		changed = append(changed, "status")
	}
	if upd.AuthMethod != nil {
		next.AuthMethod = normalize.AuthMethod(*upd.AuthMethod)
		changed = append(changed, "auth_method")
	}
	switch {
	case upd.ClearTeam:
		next.TeamID = nil
		changed = append(changed, "team_id")
	case upd.TeamID != nil:
		t := *upd.TeamID
		next.TeamID = &t
		changed = append(changed, "team_id")
	}
	if err := validate(next); err != nil {
		return models.User{}, nil, err
	}

	set := bson.M{
		"full_name":    next.FullName,
		"full_name_ci": next.FullNameCI,
		"email":        next.Email,
		"email_ci":     next.EmailCI,
		"role":         next.Role,
		"status":       next.Status,
		"auth_method":  next.AuthMethod,
		"updated_at":   time.Now().UTC(),
	}
	unset := bson.M{}
	if next.TeamID != nil {
		set["team_id"] = *next.TeamID
	} else {
		unset["team_id"] = ""
	}
	if upd.Password != nil {
		if len(*upd.Password) < MinPasswordLength {
			return models.User{}, nil, ErrWeakPassword
		}
		hash, err := HashPassword(*upd.Password)
		if err != nil {
			return models.User{}, nil, err
		}
		set["password_hash"] = hash
		changed = append(changed, "password")
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, nil, ErrDuplicateEmail
		}
		return models.User{}, nil, err
	}
	s.publish(realtime.OpUpdate, id)

	out, err := s.GetByID(ctx, id)
	return out, changed, err
}

// DetachTeam removes teamID from every user on it and returns how many
// were changed. Used when a team is deleted.
func (s *Store) DetachTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"team_id": teamID},
		bson.M{"$unset": bson.M{"team_id": ""}, "$set": bson.M{"updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	if res.ModifiedCount > 0 {
		s.publish(realtime.OpUpdate, primitive.NilObjectID)
	}
	return res.ModifiedCount, nil
}

// Count returns the number of users. Startup uses it to decide whether to
// seed the first admin.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// Names maps each of ids that exists to the user's full name.
func (s *Store) Names(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "full_name": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u.FullName
	}
	return out, cur.Err()
}
