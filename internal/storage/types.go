package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDisabled is returned by Open when no storage driver is configured.
var ErrDisabled = errors.New("storage disabled")

// RunEntry is one completed job attempt sequence.
type RunEntry struct {
	Job     string    `json:"job"`
	Trigger string    `json:"trigger"` // "cron" or "manual"
	Started time.Time `json:"started"`

	Duration time.Duration `json:"duration_ns"`
	Attempts int           `json:"attempts"`

	// Status is "ok", "failed" or "skipped".
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Store records run history. Implementations must be safe for concurrent use.
type Store interface {
	AppendRun(ctx context.Context, e RunEntry) error
	// RecentRuns returns up to limit entries, newest first.
	RecentRuns(ctx context.Context, limit int) ([]RunEntry, error)
	Close() error
}
