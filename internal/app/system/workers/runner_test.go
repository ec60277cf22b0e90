package workers_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nexera-events/symphony/internal/app/system/jobs"
	"github.com/nexera-events/symphony/internal/app/system/workers"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRunner_RunsJobsOnInterval(t *testing.T) {
	var runs atomic.Int32
	r := workers.NewRunner(zap.NewNop(), jobs.Job{
		Name:     "count",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	r.Start()

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	r.Stop()

	if got := runs.Load(); got < 3 {
		t.Errorf("job ran %d times, want at least 3", got)
	}
}

func TestRunner_SkipsDisabledJobs(t *testing.T) {
	r := workers.NewRunner(zap.NewNop(),
		jobs.Job{Name: "no-run", Interval: time.Millisecond},
		jobs.Job{Name: "no-interval", Run: func(context.Context) error {
			t.Error("job with zero interval must not run")
			return nil
		}},
	)
	r.Start()
	time.Sleep(20 * time.Millisecond)
	r.Stop()
	r.Stop() // idempotent
}

func TestRunner_LogsJobErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := workers.NewRunner(zap.New(core), jobs.Job{
		Name:     "fails",
		Interval: 5 * time.Millisecond,
		Run: func(context.Context) error {
			return errors.New("boom")
		},
	})
	r.Start()

	deadline := time.Now().Add(2 * time.Second)
	for logs.FilterMessage("background job failed").Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	r.Stop()

	entries := logs.FilterMessage("background job failed").All()
	if len(entries) == 0 {
		t.Fatal("expected a logged job failure")
	}
	if got := entries[0].ContextMap()["job"]; got != "fails" {
		t.Errorf("job field = %v, want fails", got)
	}
}

func TestAuditRetentionJob_DisabledWithoutRetention(t *testing.T) {
	j := jobs.AuditRetentionJob(nil, zap.NewNop(), 0)
	if j.Run != nil {
		t.Error("expected nil Run for zero retention")
	}
}
