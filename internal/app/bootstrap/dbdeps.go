// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/nexera-events/symphony/internal/app/system/ratelimit"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"github.com/nexera-events/symphony/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// WAFFLE hands DBDeps to each hook by value, so everything Startup builds
// for later hooks hangs off the shared *services pointer.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Hub fans writes out to live websocket clients.
	Hub *realtime.Hub

	svc *services
}

// services are the long-running pieces Startup creates and Shutdown stops.
type services struct {
	watcher *realtime.Watcher
	runner  *workers.Runner
	limiter *ratelimit.LoginLimiter
}

// storeHub is the hub stores publish to. With change streams on, the
// Watcher already relays every write, so stores publish nowhere.
func (d DBDeps) storeHub(appCfg AppConfig) *realtime.Hub {
	if appCfg.RealtimeChangeStreams {
		return nil
	}
	return d.Hub
}

func (d DBDeps) loginLimiter() *ratelimit.LoginLimiter {
	if d.svc == nil {
		return nil
	}
	return d.svc.limiter
}
