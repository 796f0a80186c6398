package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// dispatchRetryWindow bounds how long dispatch keeps being retried after an
// order entered ready. Past the window the food is going cold and retrying a
// courier request silently helps nobody; staff get alerted instead.
const dispatchRetryWindow = 5 * time.Minute

// DispatchRetryJob re-attempts courier dispatch for delivery orders that
// reached ready without a recorded courier job. Runs every 30 seconds.
type DispatchRetryJob struct {
	repo         ports.OrderRepository
	transitioner *commands.Transitioner
	cron         *cron.Cron
	logger       *slog.Logger

	mu      sync.Mutex
	alerted map[string]struct{}
}

// NewDispatchRetryJob creates the job around the repository and the
// transitioner that owns the dispatch critical section.
func NewDispatchRetryJob(
	repo ports.OrderRepository,
	transitioner *commands.Transitioner,
	logger *slog.Logger,
) *DispatchRetryJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatchRetryJob{
		repo:         repo,
		transitioner: transitioner,
		cron:         cron.New(cron.WithSeconds()),
		logger:       logger.With("component", "dispatch_retry_job"),
		alerted:      make(map[string]struct{}),
	}
}

// Start begins the dispatch retry job to run every 30 seconds.
func (j *DispatchRetryJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		j.run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispatch retry job started (running every 30 seconds)")
	return nil
}

// Stop stops the dispatch retry job.
func (j *DispatchRetryJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Dispatch retry job stopped")
}

func (j *DispatchRetryJob) run(ctx context.Context) {
	orders, err := j.repo.GetAwaitingDispatch(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "failed to load orders awaiting dispatch", "error", err)
		return
	}

	current := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		id := o.ID().String()
		current[id] = struct{}{}

		readyAt, ok := o.StatusEnteredAt(order.StatusReady)
		if ok && time.Since(readyAt) > dispatchRetryWindow {
			j.alertOnce(ctx, id, readyAt)
			continue
		}

		if err := j.transitioner.DispatchCourier(ctx, o.ID()); err != nil {
			j.logger.WarnContext(ctx, "courier dispatch retry failed",
				"order_id", id, "error", err)
		}
	}

	// Orders that dispatched or finished no longer need their alert marker.
	j.mu.Lock()
	for id := range j.alerted {
		if _, ok := current[id]; !ok {
			delete(j.alerted, id)
		}
	}
	j.mu.Unlock()
}

// alertOnce raises the stuck-order alert a single time per stranding.
func (j *DispatchRetryJob) alertOnce(ctx context.Context, orderID string, readyAt time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, seen := j.alerted[orderID]; seen {
		return
	}
	j.alerted[orderID] = struct{}{}
	j.logger.ErrorContext(ctx, "order stuck awaiting courier dispatch, staff intervention required",
		"order_id", orderID, "ready_at", readyAt)
}
