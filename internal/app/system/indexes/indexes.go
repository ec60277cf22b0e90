// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// collectionSet pairs a collection with the indexes it should carry.
type collectionSet struct {
	name    string
	indexes []mongo.IndexModel
}

/*
EnsureAll is called at startup. It is idempotent: indexes that already
exist with the same keys and options are reused, misnamed ones are renamed,
and ones whose options changed are rebuilt. Problems are aggregated so
every failing collection is reported and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string
	for _, set := range desired() {
		r := reconciler{coll: db.Collection(set.name), log: logger}
		if err := r.ensure(ctx, set.indexes); err != nil {
			problems = append(problems, set.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func desired() []collectionSet {
	return []collectionSet{
		{"users", []mongo.IndexModel{
			// Sign-in lookups are by folded email; one account per address.
			{Keys: bson.D{{Key: "email_ci", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_users_emailci")},
			// Assignee picker and admin list: role filter, name sort.
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("idx_users_role_fullnameci_id")},
			{Keys: bson.D{{Key: "team_id", Value: 1}}, Options: options.Index().SetName("idx_users_team")},
		}},
		{"teams", []mongo.IndexModel{
			{Keys: bson.D{{Key: "name_ci", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_teams_nameci")},
		}},
		{"tasks", []mongo.IndexModel{
			// Team lead view and per-team analytics.
			{Keys: bson.D{{Key: "team_id", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("idx_tasks_team_status")},
			// Volunteer view.
			{Keys: bson.D{{Key: "assignee_id", Value: 1}}, Options: options.Index().SetName("idx_tasks_assignee")},
			// Board order.
			{Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("idx_tasks_createdat_id")},
		}},
		{"events", []mongo.IndexModel{
			{Keys: bson.D{{Key: "starts_at", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("idx_events_startsat_id")},
		}},
		{"sponsors", []mongo.IndexModel{
			{Keys: bson.D{{Key: "name_ci", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_sponsors_nameci")},
			{Keys: bson.D{{Key: "tier", Value: 1}, {Key: "name_ci", Value: 1}}, Options: options.Index().SetName("idx_sponsors_tier_nameci")},
		}},
		{"logistics", []mongo.IndexModel{
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "name_ci", Value: 1}}, Options: options.Index().SetName("idx_logistics_status_nameci")},
		}},
		{"audit_events", []mongo.IndexModel{
			{Keys: bson.D{{Key: "timestamp", Value: -1}}, Options: options.Index().SetName("idx_audit_timestamp")},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("idx_audit_category_type_ts")},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("idx_audit_user_ts")},
			{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("idx_audit_actor_ts")},
			{Keys: bson.D{{Key: "team_id", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("idx_audit_team_ts")},
		}},
		{"sessions", []mongo.IndexModel{
			// Cookie check on every request and disable-user sweep.
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "logout_at", Value: 1}}, Options: options.Index().SetName("idx_sessions_user_logout")},
			// Cleanup job.
			{Keys: bson.D{{Key: "logout_at", Value: 1}, {Key: "login_at", Value: 1}}, Options: options.Index().SetName("idx_sessions_logout_login")},
		}},
		{"oauth_states", []mongo.IndexModel{
			{Keys: bson.D{{Key: "state", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_oauth_state")},
			// Expired tokens are removed by MongoDB's TTL monitor.
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_oauth_ttl")},
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name               string `bson:"name"`
	Key                bson.D `bson:"key"`
	Unique             *bool  `bson:"unique,omitempty"`
	ExpireAfterSeconds *int32 `bson:"expireAfterSeconds,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(p *bool) bool { return p != nil && *p }

func ttlVal(p *int32) int32 {
	if p == nil {
		return -1
	}
	return *p
}

// sameOptions compares the options that change index semantics.
func sameOptions(m mongo.IndexModel, ex existingIndex) bool {
	var unique *bool
	var ttl *int32
	if m.Options != nil {
		unique = m.Options.Unique
		ttl = m.Options.ExpireAfterSeconds
	}
	return boolVal(unique) == boolVal(ex.Unique) && ttlVal(ttl) == ttlVal(ex.ExpireAfterSeconds)
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

type reconciler struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func (r reconciler) existing(ctx context.Context) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := r.coll.Indexes().List(ctx)
	if err != nil {
		// A missing collection has no indexes yet.
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			r.log.Warn("failed to decode existing index",
				zap.String("collection", r.coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out
}

func (r reconciler) ensure(ctx context.Context, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		if err := r.ensureOne(ctx, m); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r reconciler) ensureOne(ctx context.Context, m mongo.IndexModel) error {
	name := ""
	if m.Options != nil && m.Options.Name != nil {
		name = *m.Options.Name
	}
	sig := keySig(m.Keys.(bson.D))
	start := time.Now()
	fields := []zap.Field{
		zap.String("collection", r.coll.Name()),
		zap.String("name", name),
		zap.String("keys", sig),
	}

	ex, found := r.existing(ctx)[sig]
	if found && sameOptions(m, ex) && (name == "" || ex.Name == name) {
		r.log.Debug("reusing existing index", fields...)
		return nil
	}
	if found {
		// Wrong name or changed options: rebuild under the desired definition.
		if _, err := r.coll.Indexes().DropOne(ctx, ex.Name); err != nil {
			r.log.Warn("drop existing index failed", append(fields, zap.String("existing", ex.Name), zap.Error(err))...)
			return fmt.Errorf("%s: drop %s failed: %w", name, ex.Name, err)
		}
		r.log.Info("rebuilding index", append(fields, zap.String("existing", ex.Name))...)
	}

	_, err := r.coll.Indexes().CreateOne(ctx, m)
	if isOptionsConflictErr(err) {
		// Someone created the same keys concurrently; take one more pass.
		if again, ok := r.existing(ctx)[sig]; ok && sameOptions(m, again) {
			r.log.Info("reusing existing index (post-conflict)", fields...)
			return nil
		}
	}
	if err != nil {
		r.log.Warn("index ensure failed", append(fields, zap.Error(err))...)
		if wafflemongo.IsDup(err) {
			return fmt.Errorf("%s: cannot create unique index on %s (duplicates present)", name, sig)
		}
		return fmt.Errorf("%s: %w", name, err)
	}

	r.log.Info("index ensured", append(fields, zap.Duration("took", time.Since(start)))...)
	return nil
}
