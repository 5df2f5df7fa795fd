package jobs

import (
	"context"
	"fmt"
	"time"

	"supaops/internal/backup"
	"supaops/internal/config"
	"supaops/internal/mailer"
	"supaops/internal/report"
	"supaops/internal/supabase"
	"supaops/pkg/logx"
)

// Deps carries the shared clients jobs are built from. Mailer may be nil when
// only the backup job is enabled.
type Deps struct {
	Client *supabase.Client
	Mailer *mailer.Mailer
	Log    logx.Logger
}

// Build assembles the enabled jobs from config. Missing secrets surface here,
// before anything is scheduled or run.
func Build(ctx context.Context, cfg config.Config, deps Deps) ([]Job, error) {
	var out []Job

	if cfg.Report.Enabled {
		if cfg.Report.Recipient == "" {
			return nil, fmt.Errorf("daily report: %s must be set", config.EnvReportRecipient)
		}
		if deps.Mailer == nil {
			return nil, fmt.Errorf("daily report: mailer not configured")
		}
		b := report.NewBuilder(deps.Client, cfg.Report)
		out = append(out, NewDailyReport(b, deps.Mailer, cfg.Report.Recipient, cfg.Report.Schedule,
			deps.Log.With(logx.String("job", "daily-report"))))
	}

	if cfg.Backup.Enabled {
		targets, err := backup.BuildUploaders(ctx, cfg.Backup.Targets,
			deps.Log.With(logx.String("job", "weekly-backup")))
		if err != nil {
			return nil, fmt.Errorf("weekly backup: %w", err)
		}
		svc := backup.NewService(deps.Client, cfg.Backup.Tables, targets,
			deps.Log.With(logx.String("job", "weekly-backup")))
		out = append(out, NewWeeklyBackup(svc, cfg.Backup.Schedule,
			deps.Log.With(logx.String("job", "weekly-backup"))))
	}

	return out, nil
}

// Timeout resolves the per-job run timeout from config.
func Timeout(cfg config.Config, name string) time.Duration {
	switch name {
	case "daily-report":
		return config.DurationOrDefault(cfg.Report.Timeout, 5*time.Minute)
	case "weekly-backup":
		return config.DurationOrDefault(cfg.Backup.Timeout, 30*time.Minute)
	default:
		return config.DurationOrDefault(cfg.Scheduler.DefaultTimeout, 0)
	}
}
