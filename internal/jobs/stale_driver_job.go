package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// staleDriverSchedule runs the sweep every 30 seconds; fine-grained enough
// that a silent driver flips to OFFLINE well within one staleness window.
const staleDriverSchedule = "*/30 * * * * *"

// StaleDriverJob periodically marks drivers whose last position report is
// older than the staleness window as OFFLINE, so dispatch boards and ETA
// consumers stop trusting their position.
type StaleDriverJob struct {
	handler commands.MarkStaleDriversCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewStaleDriverJob creates the staleness sweep job.
func NewStaleDriverJob(handler commands.MarkStaleDriversCommandHandler, logger *slog.Logger) *StaleDriverJob {
	return &StaleDriverJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "stale_driver_job"),
	}
}

// Start begins the staleness sweep.
func (j *StaleDriverJob) Start() error {
	_, err := j.cron.AddFunc(staleDriverSchedule, func() {
		ctx := context.Background()
		cmd := commands.NewMarkStaleDriversCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Stale driver sweep failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stale driver sweep started (running every 30 seconds)")
	return nil
}

// Stop stops the staleness sweep.
func (j *StaleDriverJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Stale driver sweep stopped")
}
