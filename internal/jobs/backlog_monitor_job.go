package jobs

import (
	"context"
	"log/slog"
	"time"

	"tableside/internal/core/application/usecases/queries"
	"tableside/internal/core/domain/model/order"

	"github.com/robfig/cron/v3"
)

// BacklogMonitorJob watches for orders stuck at the start of the lifecycle.
// Every interval it lists the active orders and warns about those still in
// received status past the configured age. Visibility only: status changes
// stay with the kitchen dashboard.
type BacklogMonitorJob struct {
	handler  queries.GetActiveOrdersQueryHandler
	maxAge   time.Duration
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewBacklogMonitorJob creates the monitor. schedule is a six-field cron
// expression; maxAge is how long an order may sit in received before it is
// reported.
func NewBacklogMonitorJob(
	handler queries.GetActiveOrdersQueryHandler,
	schedule string,
	maxAge time.Duration,
	logger *slog.Logger,
) *BacklogMonitorJob {
	return &BacklogMonitorJob{
		handler:  handler,
		maxAge:   maxAge,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "backlog_monitor_job"),
	}
}

// Start schedules the monitor.
func (j *BacklogMonitorJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, j.run)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Backlog monitor job started",
		"schedule", j.schedule, "max_age", j.maxAge.String())
	return nil
}

// Stop stops the monitor.
func (j *BacklogMonitorJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Backlog monitor job stopped")
}

func (j *BacklogMonitorJob) run() {
	ctx := context.Background()

	views, err := j.handler.Handle(ctx, queries.NewGetActiveOrdersQuery())
	if err != nil {
		j.logger.ErrorContext(ctx, "Backlog monitor job failed", "error", err)
		return
	}

	cutoff := time.Now().UTC().Add(-j.maxAge)
	for _, view := range views {
		if view.Status != order.Received || view.CreatedAt.After(cutoff) {
			continue
		}

		j.logger.WarnContext(ctx, "Order stuck in received status",
			"order_id", view.ID.String(),
			"table_number", view.TableNumber,
			"age", time.Since(view.CreatedAt).Round(time.Second).String())
	}
}
