// Package jobs defines the automation jobs and assembles them from config.
// Each job is independently runnable, both from the cron scheduler in daemon
// mode and from a one-shot `supaops run` invocation.
package jobs

import "context"

type Job interface {
	// Name is the stable identifier used in schedules, logs and run history.
	Name() string
	// Schedule is the cron expression the daemon registers the job under.
	Schedule() string
	Run(ctx context.Context) error
}
