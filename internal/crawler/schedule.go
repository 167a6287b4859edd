package crawler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/thep200/oss-finder/pkg/log"
)

// Scheduler runs jobs on cron specs ("@every 1h", "0 */6 * * *"). A job still running
// when its next tick arrives is skipped.
type Scheduler struct {
	Logger  log.Logger
	cron    *cron.Cron
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

func NewScheduler(logger log.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		Logger: logger,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule adds job under spec. The job's context is cancelled by Stop.
func (s *Scheduler) Schedule(spec, name string, job func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := job(s.ctx); err != nil {
			s.Logger.Error(s.ctx, "[SCHEDULER] Job %s failed after %s: %v", name, time.Since(start), err)
			return
		}
		s.Logger.Info(s.ctx, "[SCHEDULER] Job %s finished in %s", name, time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("schedule %s with %q: %w", name, spec, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// Stop cancels running jobs and waits for them, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	if !s.started {
		return nil
	}
	s.started = false
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
