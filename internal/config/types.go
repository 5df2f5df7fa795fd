package config

// Config is the root configuration for supaops.
//
// Secrets (Supabase key, Gmail app password, Drive credentials, S3 keys) are
// normally supplied through the environment and merged over the file values by
// ApplyEnv. Keeping them out of the config file is recommended.
type Config struct {
	Supabase SupabaseConfig `json:"supabase"`
	Report   ReportConfig   `json:"report"`
	Backup   BackupConfig   `json:"backup"`
	Email    EmailConfig    `json:"email"`

	Logging   LoggingConfig   `json:"logging"`
	Scheduler SchedulerConfig `json:"scheduler"`

	// Metrics controls the optional Prometheus endpoint (daemon mode only).
	Metrics *MetricsConfig `json:"metrics,omitempty"`

	// Storage controls the optional run-history persistence layer.
	Storage *StorageConfig `json:"storage,omitempty"`
}

type SupabaseConfig struct {
	URL string `json:"url"`
	Key string `json:"key,omitempty"`

	// Timeout is a Go duration string applied to individual REST calls.
	Timeout string `json:"timeout,omitempty"`
}

// ReportConfig describes the daily report job.
type ReportConfig struct {
	Enabled bool `json:"enabled"`

	// Schedule is a 5-field cron expression. Default: "0 18 * * *" (18:00 daily).
	Schedule  string `json:"schedule,omitempty"`
	Recipient string `json:"recipient,omitempty"`

	// Table names, matching the upstream Supabase project.
	LeadsTable   string `json:"leads_table,omitempty"`   // default "leads_db"
	OrgsTable    string `json:"orgs_table,omitempty"`    // default "orgs_db"
	CallsTable   string `json:"calls_table,omitempty"`   // default "calls"
	CreditsTable string `json:"credits_table,omitempty"` // default "apollo_credits"

	// Timeout is a Go duration string for the whole job run.
	Timeout string `json:"timeout,omitempty"`
}

// BackupConfig describes the weekly backup job.
type BackupConfig struct {
	Enabled bool `json:"enabled"`

	// Schedule is a 5-field cron expression. Default: "0 18 * * 5" (Friday 18:00).
	Schedule string `json:"schedule,omitempty"`

	// Tables to export. Default: leads_db, orgs_db.
	Tables []string `json:"tables,omitempty"`

	Targets []TargetConfig `json:"targets,omitempty"`

	// Timeout is a Go duration string for the whole job run.
	Timeout string `json:"timeout,omitempty"`
}

// TargetConfig selects one backup destination.
//
// Kind values:
//   - "drive": Google Drive (service account)
//   - "s3":    S3-compatible object store (MinIO, AWS S3, ...)
type TargetConfig struct {
	Kind  string             `json:"kind"`
	Drive *DriveTargetConfig `json:"drive,omitempty"`
	S3    *S3TargetConfig    `json:"s3,omitempty"`
}

type DriveTargetConfig struct {
	// Credentials is the base64-encoded service-account JSON
	// (the GOOGLE_DRIVE_CREDENTIALS contract of the original workflow).
	Credentials string `json:"credentials,omitempty"`
	FolderID    string `json:"folder_id,omitempty"`
}

type S3TargetConfig struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
	Bucket    string `json:"bucket"`
	UseSSL    bool   `json:"use_ssl,omitempty"`

	// Prefix is prepended to object keys, e.g. "backups/".
	Prefix string `json:"prefix,omitempty"`
}

// EmailConfig configures the SMTP mailer used for the daily report and
// (optionally) log alerts.
type EmailConfig struct {
	Host string `json:"host,omitempty"` // default "smtp.gmail.com"
	Port int    `json:"port,omitempty"` // default 587
	User string `json:"user,omitempty"`
	// Password is the Gmail app password (GMAIL_APP_PASSWORD).
	Password string `json:"password,omitempty"`
	// From defaults to User.
	From string `json:"from,omitempty"`
	// AlertRecipient receives log alert emails; defaults to report.recipient.
	AlertRecipient string `json:"alert_recipient,omitempty"`
}

type LoggingConfig struct {
	Level   string        `json:"level"`
	Console bool          `json:"console"`
	File    LoggingFile   `json:"file"`
	Alerts  LoggingAlerts `json:"alerts"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoggingAlerts forwards high-severity log lines to the report recipient by email.
type LoggingAlerts struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level,omitempty"`
	RatePerMin int    `json:"rate_per_min,omitempty"`
}

// SchedulerConfig controls the trigger/execution service (daemon mode).
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type SchedulerConfig struct {
	// Enabled defaults to true when omitted: a daemon whose jobs never fire
	// is a silent no-op. Set "enabled: false" explicitly to register jobs
	// without running them.
	Enabled *bool `json:"enabled,omitempty"`

	Workers int `json:"workers,omitempty"`
	// DefaultTimeout applies when a job has no timeout of its own.
	// Use "0s" to disable a global default timeout.
	DefaultTimeout string `json:"default_timeout,omitempty"`
	HistorySize    int    `json:"history_size,omitempty"`
	RetryMax       int    `json:"retry_max,omitempty"`

	// Trigger timezone (IANA). Default "UTC" to match the upstream workflow.
	Timezone string `json:"timezone,omitempty"`
}

// IsEnabled reports whether the scheduler should run; an omitted flag means enabled.
func (s SchedulerConfig) IsEnabled() bool { return s.Enabled == nil || *s.Enabled }

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default "127.0.0.1:9090"
}

// StorageConfig controls the optional run-history persistence layer.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./supaops_store" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// Defaults used when fields are omitted.
const (
	DefaultDailySchedule  = "0 18 * * *"
	DefaultWeeklySchedule = "0 18 * * 5"

	DefaultLeadsTable   = "leads_db"
	DefaultOrgsTable    = "orgs_db"
	DefaultCallsTable   = "calls"
	DefaultCreditsTable = "apollo_credits"

	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 587
)

// WithDefaults returns a copy of cfg with omitted fields filled in.
func (c Config) WithDefaults() Config {
	out := c
	if out.Report.Schedule == "" {
		out.Report.Schedule = DefaultDailySchedule
	}
	if out.Report.LeadsTable == "" {
		out.Report.LeadsTable = DefaultLeadsTable
	}
	if out.Report.OrgsTable == "" {
		out.Report.OrgsTable = DefaultOrgsTable
	}
	if out.Report.CallsTable == "" {
		out.Report.CallsTable = DefaultCallsTable
	}
	if out.Report.CreditsTable == "" {
		out.Report.CreditsTable = DefaultCreditsTable
	}
	if out.Backup.Schedule == "" {
		out.Backup.Schedule = DefaultWeeklySchedule
	}
	if len(out.Backup.Tables) == 0 {
		out.Backup.Tables = []string{DefaultLeadsTable, DefaultOrgsTable}
	}
	if out.Email.Host == "" {
		out.Email.Host = DefaultSMTPHost
	}
	if out.Email.Port == 0 {
		out.Email.Port = DefaultSMTPPort
	}
	if out.Email.From == "" {
		out.Email.From = out.Email.User
	}
	if out.Email.AlertRecipient == "" {
		out.Email.AlertRecipient = out.Report.Recipient
	}
	if out.Scheduler.Enabled == nil {
		enabled := true
		out.Scheduler.Enabled = &enabled
	}
	if out.Scheduler.Timezone == "" {
		out.Scheduler.Timezone = "UTC"
	}
	return out
}
