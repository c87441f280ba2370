package scheduler

import (
	"context"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Warmer fills the cached dashboard aggregates of one vendor.
type Warmer interface {
	Warm(ctx context.Context, vendorID int64) error
}

// VendorLister lists every vendor that has leads.
type VendorLister interface {
	ListVendorIDs(ctx context.Context) ([]int64, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	warmer   Warmer
	vendors  VendorLister
	enqueuer WarmEnqueuer
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, warmer Warmer, vendors VendorLister, enqueuer WarmEnqueuer, log *logger.Logger) (*Worker, error) {
	opt, err := redisOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(warmer, vendors, enqueuer, log)
	w.server = server
	return w, nil
}

func newWorker(warmer Warmer, vendors VendorLister, enqueuer WarmEnqueuer, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Discard()
	}
	w := &Worker{
		mux:      asynq.NewServeMux(),
		warmer:   warmer,
		vendors:  vendors,
		enqueuer: enqueuer,
		log:      log,
	}
	w.mux.HandleFunc(TaskDashboardWarm, w.handleDashboardWarm)
	w.mux.HandleFunc(TaskDashboardWarmAll, w.handleDashboardWarmAll)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	if err := w.server.Start(w.mux); err != nil {
		w.log.Error("scheduler worker failed to start", "error", err)
		return
	}
	<-ctx.Done()
	w.server.Shutdown()
}

func (w *Worker) handleDashboardWarm(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDashboardWarmPayload(task)
	if err != nil {
		// A malformed payload never succeeds on retry.
		w.log.Error("dropping dashboard warm task", "error", err)
		return asynq.SkipRetry
	}
	return w.warmer.Warm(ctx, payload.VendorID)
}

// handleDashboardWarmAll queues one warm-up per vendor. A failed enqueue is
// logged and the remaining vendors are still queued.
func (w *Worker) handleDashboardWarmAll(ctx context.Context, _ *asynq.Task) error {
	vendorIDs, err := w.vendors.ListVendorIDs(ctx)
	if err != nil {
		return err
	}

	queued := 0
	for _, vendorID := range vendorIDs {
		if err := w.enqueuer.EnqueueDashboardWarm(ctx, vendorID); err != nil {
			w.log.Warn("failed to queue dashboard warm-up", "vendorId", vendorID, "error", err)
			continue
		}
		queued++
	}
	w.log.Info("dashboard warm-ups queued", "vendors", len(vendorIDs), "queued", queued)
	return nil
}
