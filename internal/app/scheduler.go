package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// updateTimeout bounds a scheduled update run.
const updateTimeout = time.Hour

// StartScheduler runs Update on the configured cron schedule. It is a no-op
// when the schedule is disabled.
func (a *App) StartScheduler() error {
	if !a.Config.Schedule.Enabled {
		a.Logger.Info().Msg("Scheduler disabled")
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(a.Config.Schedule.Cron, a.scheduledUpdate); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", a.Config.Schedule.Cron, err)
	}
	c.Start()
	a.scheduler = c

	a.Logger.Info().Str("cron", a.Config.Schedule.Cron).Msg("Scheduler started")
	return nil
}

// NextRun returns the next scheduled update time, zero when unscheduled.
func (a *App) NextRun() time.Time {
	if a.scheduler == nil {
		return time.Time{}
	}
	entries := a.scheduler.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (a *App) scheduledUpdate() {
	ctx, cancel := context.WithTimeout(a.ctx, updateTimeout)
	defer cancel()

	if _, err := a.Update(ctx); err != nil {
		if errors.Is(err, ErrUpdateRunning) {
			a.Logger.Warn().Msg("Scheduled update skipped: previous run still in progress")
			return
		}
		a.Logger.Warn().Err(err).Msg("Scheduled update failed")
	}
}
