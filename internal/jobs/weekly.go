package jobs

import (
	"context"
	"fmt"
	"time"

	"supaops/internal/backup"
	"supaops/pkg/logx"
)

// WeeklyBackup exports the configured tables to CSV and uploads the snapshots
// to every backup target.
type WeeklyBackup struct {
	svc      *backup.Service
	schedule string
	log      logx.Logger

	now func() time.Time
}

func NewWeeklyBackup(svc *backup.Service, schedule string, log logx.Logger) *WeeklyBackup {
	return &WeeklyBackup{svc: svc, schedule: schedule, log: log, now: time.Now}
}

func (j *WeeklyBackup) Name() string     { return "weekly-backup" }
func (j *WeeklyBackup) Schedule() string { return j.schedule }

func (j *WeeklyBackup) Run(ctx context.Context) error {
	if err := j.svc.Run(ctx, j.now()); err != nil {
		return fmt.Errorf("weekly backup: %w", err)
	}
	j.log.Info("weekly backup completed")
	return nil
}
