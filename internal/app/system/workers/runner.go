// internal/app/system/workers/runner.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/nexera-events/symphony/internal/app/system/jobs"
	"go.uber.org/zap"
)

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = 30 * time.Second

// Runner is a background worker that runs each job on its own ticker.
// Jobs with a nil Run or a non-positive Interval are skipped.
type Runner struct {
	jobs       []jobs.Job
	log        *zap.Logger
	jobTimeout time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewRunner creates a runner for the given jobs.
func NewRunner(logger *zap.Logger, js ...jobs.Job) *Runner {
	return &Runner{
		jobs:       js,
		log:        logger,
		jobTimeout: DefaultJobTimeout,
		stopCh:     make(chan struct{}),
	}
}

// Start launches one goroutine per runnable job.
func (w *Runner) Start() {
	for _, j := range w.jobs {
		if j.Run == nil || j.Interval <= 0 {
			w.log.Debug("job disabled", zap.String("job", j.Name))
			continue
		}
		w.wg.Add(1)
		go w.run(j)
		w.log.Info("background job started",
			zap.String("job", j.Name),
			zap.Duration("interval", j.Interval))
	}
}

// Stop signals every job to stop and waits for them to finish.
// It is safe to call more than once.
func (w *Runner) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("background jobs stopped")
}

func (w *Runner) run(j jobs.Job) {
	defer w.wg.Done()

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.runOnce(j)
		}
	}
}

func (w *Runner) runOnce(j jobs.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), w.jobTimeout)
	defer cancel()

	start := time.Now()
	if err := j.Run(ctx); err != nil {
		w.log.Error("background job failed",
			zap.String("job", j.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
	}
}
