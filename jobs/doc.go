// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package jobs runs background work on cron schedules.

# Scheduler

Scheduler wraps robfig/cron. Jobs never overlap themselves, panics are
recovered and logged, and every run gets a context with a timeout that
is cancelled when the scheduler stops.

	scheduler := jobs.NewScheduler(30 * time.Second)
	scheduler.Schedule(cfg.PollSweepSchedule, jobs.NewPollCloser(db))
	scheduler.Start()
	defer scheduler.Stop(ctx)

# Job Interface

	type Job interface {
	    Name() string
	    Run(ctx context.Context) error
	}

Func adapts a plain function.

# Poll Closing

PollCloser marks lake polls complete once ends_at has passed. Handlers
already treat a poll as closed after its end time; the sweep makes the
stored flag agree so lists and the results API report it without
comparing clocks.
*/
package jobs
