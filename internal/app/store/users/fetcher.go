package userstore

import (
	"context"
	"errors"

	"github.com/nexera-events/symphony/internal/app/system/identity"
	"github.com/nexera-events/symphony/internal/app/system/normalize"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
// It fetches user and team data from MongoDB.
type Fetcher struct {
	users *mongo.Collection
	teams *mongo.Collection
	log   *zap.Logger
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		users: db.Collection(Collection),
		teams: db.Collection("teams"),
		log:   logger,
	}
}

// FetchIdentity resolves userID to the user's current identity. It
// reports false if the id is malformed or the user is missing or disabled.
// A failed team lookup yields an identity without a team name, which the
// delegated sponsor and logistics checks then deny.
func (f *Fetcher) FetchIdentity(ctx context.Context, userID string) (identity.Identity, bool) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return identity.None, false
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":       1,
		"full_name": 1,
		"email":     1,
		"role":      1,
		"status":    1,
		"team_id":   1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			f.log.Warn("identity lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return identity.None, false
	}
	if normalize.Status(u.Status) == models.UserStatusDisabled {
		return identity.None, false
	}

	rec := identity.Record{
		ID:     u.ID,
		Name:   u.FullName,
		Email:  u.Email,
		Role:   u.Role,
		TeamID: u.TeamID,
	}
	if u.TeamID != nil {
		var team models.Team
		teamProj := options.FindOne().SetProjection(bson.M{"name": 1})
		if err := f.teams.FindOne(ctx, bson.M{"_id": *u.TeamID}, teamProj).Decode(&team); err == nil {
			rec.TeamName = team.Name
		}
	}
	return identity.FromRecord(rec), true
}
