// internal/app/system/jobs/jobs.go
package jobs

import (
	"context"
	"time"

	"github.com/nexera-events/symphony/internal/app/store/audit"
	"github.com/nexera-events/symphony/internal/app/store/oauthstate"
	sessionstore "github.com/nexera-events/symphony/internal/app/store/sessions"
	"go.uber.org/zap"
)

// Job is a unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// OAuthStateCleanupJob creates a job that removes expired OAuth state tokens.
// This is a backup for when MongoDB's TTL index cleanup is delayed.
func OAuthStateCleanupJob(stateStore *oauthstate.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "oauth-state-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := stateStore.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired OAuth states", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// AuditRetentionJob creates a job that deletes audit events older than
// retention. A non-positive retention keeps events forever, and the
// returned job has a nil Run.
func AuditRetentionJob(auditStore *audit.Store, logger *zap.Logger, retention time.Duration) Job {
	job := Job{Name: "audit-retention", Interval: 24 * time.Hour}
	if retention <= 0 {
		return job
	}
	job.Run = func(ctx context.Context) error {
		cutoff := time.Now().UTC().Add(-retention)
		count, err := auditStore.DeleteBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		if count > 0 {
			logger.Info("pruned audit events",
				zap.Int64("count", count),
				zap.Time("cutoff", cutoff))
		}
		return nil
	}
	return job
}

// endedSessionKeep is how long ended session records stay for audit lookups.
const endedSessionKeep = 30 * 24 * time.Hour

// SessionCleanupJob creates a job that closes sessions older than maxAge,
// whose cookies the browser has already dropped, and deletes records that
// ended more than 30 days ago.
func SessionCleanupJob(sessionStore *sessionstore.Store, logger *zap.Logger, maxAge time.Duration) Job {
	return Job{
		Name:     "session-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			now := time.Now().UTC()
			expired, err := sessionStore.ExpireStale(ctx, now.Add(-maxAge))
			if err != nil {
				return err
			}
			deleted, err := sessionStore.DeleteEndedBefore(ctx, now.Add(-endedSessionKeep))
			if err != nil {
				return err
			}
			if expired > 0 || deleted > 0 {
				logger.Debug("cleaned up sessions",
					zap.Int64("expired", expired),
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}
