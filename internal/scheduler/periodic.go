package scheduler

import (
	"context"
	"fmt"
	"time"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/hibiken/asynq"
)

const defaultCacheWarmInterval = 5 * time.Minute

// Periodic registers the recurring jobs with an asynq scheduler.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	opt, err := redisOpt(cfg)
	if err != nil {
		return nil, err
	}

	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})
	spec := cronSpec(cfg.GetCacheWarmInterval())
	entryID, err := s.Register(spec, NewDashboardWarmAllTask(), asynq.Queue(queueName(cfg)), asynq.MaxRetry(0))
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", TaskDashboardWarmAll, err)
	}
	log.Info("periodic job registered", "task", TaskDashboardWarmAll, "spec", spec, "entryId", entryID)

	return &Periodic{scheduler: s, log: log}, nil
}

func cronSpec(interval time.Duration) string {
	if interval <= 0 {
		interval = defaultCacheWarmInterval
	}
	return "@every " + interval.String()
}

// Run blocks until ctx is done.
func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}
	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler failed to start", "error", err)
		return
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
}
