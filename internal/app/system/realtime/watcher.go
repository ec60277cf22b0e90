package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Backoff bounds for restarting a failed change stream.
const (
	MinBackoff = 500 * time.Millisecond
	MaxBackoff = 30 * time.Second
)

// changeEvent is the subset of a change stream document the Watcher reads.
type changeEvent struct {
	OperationType string `bson:"operationType"`
	NS            struct {
		Coll string `bson:"coll"`
	} `bson:"ns"`
	DocumentKey struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
}

// Watcher relays a database change stream into a Hub. Change streams
// need a replica set; on a standalone server the stream fails to open and
// the Watcher keeps retrying with backoff, so disable it in config there.
type Watcher struct {
	db          *mongo.Database
	hub         *Hub
	log         *zap.Logger
	collections []string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher returns a Watcher for the named collections.
func NewWatcher(db *mongo.Database, hub *Hub, logger *zap.Logger, collections ...string) *Watcher {
	return &Watcher{
		db:          db,
		hub:         hub,
		log:         logger,
		collections: collections,
	}
}

// Start runs the watch loop in the background until Stop or ctx ends.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.Run(ctx)
	}()
	w.log.Info("realtime watcher started", zap.Strings("collections", w.collections))
}

// Stop cancels the watch loop and waits for it to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.log.Info("realtime watcher stopped")
}

// Run watches until ctx is cancelled, reopening the stream after errors.
// It resumes after the last delivered event when the server still has it.
func (w *Watcher) Run(ctx context.Context) {
	var resume bson.Raw
	backoff := MinBackoff

	for {
		token, err := w.watchOnce(ctx, resume)
		if token != nil {
			resume = token
			backoff = MinBackoff
		}
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			w.log.Warn("change stream ended, retrying",
				zap.Error(err), zap.Duration("backoff", backoff))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)
	}
}

func (w *Watcher) watchOnce(ctx context.Context, resume bson.Raw) (bson.Raw, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"ns.coll":       bson.M{"$in": w.collections},
			"operationType": bson.M{"$in": []string{"insert", "update", "replace", "delete"}},
		}}},
	}
	opts := options.ChangeStream()
	if resume != nil {
		opts.SetResumeAfter(resume)
	}

	cs, err := w.db.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}
	defer cs.Close(context.Background())

	var last bson.Raw
	for cs.Next(ctx) {
		var ev changeEvent
		if err := cs.Decode(&ev); err != nil {
			w.log.Warn("undecodable change event", zap.Error(err))
			continue
		}
		w.hub.Publish(Change{
			Collection: ev.NS.Coll,
			Op:         normalizeOp(ev.OperationType),
			ID:         ev.DocumentKey.ID,
		})
		last = cs.ResumeToken()
	}
	if err := cs.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return last, err
	}
	return last, nil
}

// normalizeOp folds "replace" into OpUpdate.
func normalizeOp(op string) string {
	switch op {
	case "insert":
		return OpInsert
	case "delete":
		return OpDelete
	default:
		return OpUpdate
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > MaxBackoff {
		return MaxBackoff
	}
	return d
}
