package app

import (
	"time"

	"supaops/internal/config"
	"supaops/internal/services/scheduler"
	"supaops/pkg/logx"
)

func mapLogConfig(cfg config.Config) logx.Config {
	l := cfg.Logging
	return logx.Config{
		Level:   l.Level,
		Console: l.Console,
		File: logx.FileConfig{
			Enabled: l.File.Enabled,
			Path:    l.File.Path,
		},
		Alerts: logx.AlertConfig{
			Enabled:    l.Alerts.Enabled,
			MinLevel:   l.Alerts.MinLevel,
			RatePerMin: l.Alerts.RatePerMin,
		},
	}
}

func mapSchedulerConfig(cfg config.Config) scheduler.Config {
	s := cfg.Scheduler
	return scheduler.Config{
		Enabled:        s.IsEnabled(),
		Workers:        s.Workers,
		DefaultTimeout: config.DurationOrDefault(s.DefaultTimeout, 10*time.Minute),
		HistorySize:    s.HistorySize,
		Timezone:       s.Timezone,
		RetryMax:       s.RetryMax,
	}
}

func mapMetricsConfig(cfg config.Config) config.MetricsConfig {
	if cfg.Metrics == nil {
		return config.MetricsConfig{}
	}
	return *cfg.Metrics
}
