package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// Validate checks cfg for problems that should reject a commit. It assumes
// defaults have been applied.
func Validate(cfg Config) error {
	if _, err := cronParser.Parse(cfg.Report.Schedule); err != nil {
		return fmt.Errorf("report.schedule: %w", err)
	}
	if _, err := cronParser.Parse(cfg.Backup.Schedule); err != nil {
		return fmt.Errorf("backup.schedule: %w", err)
	}

	for _, f := range []struct{ name, raw string }{
		{"supabase.timeout", cfg.Supabase.Timeout},
		{"report.timeout", cfg.Report.Timeout},
		{"backup.timeout", cfg.Backup.Timeout},
		{"scheduler.default_timeout", cfg.Scheduler.DefaultTimeout},
	} {
		if _, err := ParseDurationField(f.name, f.raw); err != nil {
			return err
		}
	}

	if cfg.Scheduler.Workers < 0 {
		return fmt.Errorf("scheduler.workers: must not be negative")
	}
	if cfg.Scheduler.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Scheduler.Timezone); err != nil {
			return fmt.Errorf("scheduler.timezone: %w", err)
		}
	}

	for i, t := range cfg.Backup.Targets {
		switch t.Kind {
		case "drive":
			// Credentials may arrive later via the environment.
		case "s3":
			if t.S3 == nil || t.S3.Endpoint == "" {
				return fmt.Errorf("backup.targets[%d]: s3 target needs an endpoint", i)
			}
			if t.S3.Bucket == "" {
				return fmt.Errorf("backup.targets[%d]: s3 target needs a bucket", i)
			}
		default:
			return fmt.Errorf("backup.targets[%d]: unknown kind %q", i, t.Kind)
		}
	}

	if s := cfg.Storage; s != nil {
		switch s.Driver {
		case "", "file", "sqlite":
		default:
			return fmt.Errorf("storage.driver: unknown driver %q", s.Driver)
		}
		if _, err := ParseDurationField("storage.busy_timeout", s.BusyTimeout); err != nil {
			return err
		}
	}
	return nil
}
