// Package scheduler runs registered jobs on cron or interval triggers.
//
// Triggers fire in the configured timezone and enqueue work onto a small
// worker pool. Each execution gets a per-attempt timeout, retries with
// exponential backoff and jitter, and an overlap policy so a slow run is
// never stacked behind its own next trigger. Lifecycle events are published
// on the event bus ("job.started", "job.finished", "job.failed",
// "job.skipped") for history persistence and metrics.
package scheduler
