package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the password of every user created by Fixtures.
const TestPassword = "correct horse battery"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

// CreateTeam creates a team with no lead.
func (f *Fixtures) CreateTeam(ctx context.Context, name string) models.Team {
	f.t.Helper()

	now := time.Now().UTC()
	team := models.Team{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "teams", team)
	return team
}

// CreateUser creates an active password user whose password is TestPassword.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string, teamID *primitive.ObjectID) models.User {
	f.t.Helper()
	return f.createUser(ctx, fullName, email, role, models.UserStatusActive, teamID)
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "admin", nil)
}

// CreateTeamLead creates a team lead on the given team.
func (f *Fixtures) CreateTeamLead(ctx context.Context, fullName, email string, teamID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "team_lead", &teamID)
}

// CreateVolunteer creates a volunteer on the given team.
func (f *Fixtures) CreateVolunteer(ctx context.Context, fullName, email string, teamID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "volunteer", &teamID)
}

// CreateDisabledUser creates a volunteer with disabled status.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.createUser(ctx, fullName, email, "volunteer", models.UserStatusDisabled, nil)
}

func (f *Fixtures) createUser(ctx context.Context, fullName, email, role, status string, teamID *primitive.ObjectID) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash test password: %v", err)
	}
	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: string(hash),
		AuthMethod:   models.AuthMethodPassword,
		Role:         role,
		TeamID:       teamID,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "users", user)
	return user
}

// CreateTask creates a To Do task owned by teamID and assigned to
// assigneeID. Either id may be primitive.NilObjectID.
func (f *Fixtures) CreateTask(ctx context.Context, title string, teamID, assigneeID primitive.ObjectID) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:         primitive.NewObjectID(),
		Title:      title,
		TitleCI:    text.Fold(title),
		TeamID:     teamID,
		AssigneeID: assigneeID,
		Status:     models.TaskToDo,
		Priority:   models.PriorityMedium,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "tasks", task)
	return task
}

// CreateEvent creates an event starting at startsAt.
func (f *Fixtures) CreateEvent(ctx context.Context, title string, startsAt time.Time) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		StartsAt:  startsAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "events", ev)
	return ev
}

// CreateSponsor creates a prospect sponsor on the given tier.
func (f *Fixtures) CreateSponsor(ctx context.Context, name, tier string) models.Sponsor {
	f.t.Helper()

	now := time.Now().UTC()
	sp := models.Sponsor{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Tier:      tier,
		Status:    models.SponsorProspect,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "sponsors", sp)
	return sp
}

// CreateLogisticsItem creates a needed logistics item.
func (f *Fixtures) CreateLogisticsItem(ctx context.Context, name string, quantity int) models.LogisticsItem {
	f.t.Helper()

	now := time.Now().UTC()
	item := models.LogisticsItem{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Quantity:  quantity,
		Status:    models.LogisticsNeeded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "logistics", item)
	return item
}
