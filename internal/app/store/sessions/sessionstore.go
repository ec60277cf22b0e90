// Package sessionstore keeps the server-side record of each sign-in. A
// session cookie is honoured only while its record has no logout_at.
package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection holding sessions.
const Collection = realtime.Sessions

// End reasons set by this package. Sign-in and sign-out reasons come from
// the auth package.
const (
	EndExpired  = "expired"
	EndDisabled = "disabled"
)

// Session is one sign-in, from login until logout or replacement.
type Session struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       primitive.ObjectID `bson:"user_id"`
	LoginAt      time.Time          `bson:"login_at"`
	LogoutAt     *time.Time         `bson:"logout_at,omitempty"`
	EndReason    string             `bson:"end_reason,omitempty"` // "logout", "replaced", "expired", "disabled"
	IP           string             `bson:"ip"`
	UserAgent    string             `bson:"user_agent,omitempty"`
	DurationSecs int64              `bson:"duration_secs,omitempty"`
}

// Store implements auth.SessionTracker over MongoDB.
type Store struct {
	c   *mongo.Collection
	hub *realtime.Hub
}

func New(db *mongo.Database, hub *realtime.Hub) *Store {
	return &Store{c: db.Collection(Collection), hub: hub}
}

// Start opens a session for userID and returns its id.
func (s *Store) Start(ctx context.Context, userID primitive.ObjectID, ip, userAgent string) (primitive.ObjectID, error) {
	sess := Session{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		LoginAt:   time.Now().UTC(),
		IP:        ip,
		UserAgent: userAgent,
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return primitive.NilObjectID, err
	}
	return sess.ID, nil
}

// End closes an open session with reason. Ending an already closed or
// unknown session is a no-op.
func (s *Store) End(ctx context.Context, sessionID primitive.ObjectID, reason string) error {
	var before Session
	err := s.c.FindOne(ctx, bson.M{"_id": sessionID, "logout_at": nil}).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": sessionID, "logout_at": nil},
		bson.M{"$set": bson.M{
			"logout_at":     now,
			"end_reason":    reason,
			"duration_secs": int64(now.Sub(before.LoginAt).Seconds()),
		}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount > 0 {
		s.hub.Publish(realtime.Change{Collection: Collection, Op: realtime.OpUpdate, ID: sessionID})
	}
	return nil
}

// Active reports whether sessionID belongs to userID and is still open.
func (s *Store) Active(ctx context.Context, sessionID, userID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx,
		bson.M{"_id": sessionID, "user_id": userID, "logout_at": nil},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// EndAllForUser closes every open session of userID, for example when an
// admin disables the account.
func (s *Store) EndAllForUser(ctx context.Context, userID primitive.ObjectID, reason string) (int64, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID, "logout_at": nil},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, err
	}
	var open []Session
	if err := cur.All(ctx, &open); err != nil {
		return 0, err
	}

	var ended int64
	for _, sess := range open {
		if err := s.End(ctx, sess.ID, reason); err != nil {
			return ended, err
		}
		ended++
	}
	return ended, nil
}

// ExpireStale closes open sessions that started before cutoff; their
// cookies have already expired in the browser.
func (s *Store) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"logout_at": nil, "login_at": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{"logout_at": time.Now().UTC(), "end_reason": EndExpired}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteEndedBefore removes sessions that ended before cutoff.
func (s *Store) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"logout_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
