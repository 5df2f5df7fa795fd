package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables recognized by ApplyEnv. They match the secret names
// of the original scheduled workflow, so existing secret stores keep working.
const (
	EnvSupabaseURL = "SUPABASE_URL"
	EnvSupabaseKey = "SUPABASE_KEY"

	EnvGmailUser        = "GMAIL_USER"
	EnvGmailAppPassword = "GMAIL_APP_PASSWORD"
	EnvReportRecipient  = "REPORT_RECIPIENT"

	EnvDriveCredentials = "GOOGLE_DRIVE_CREDENTIALS"
	EnvDriveFolderID    = "GOOGLE_DRIVE_FOLDER_ID"

	EnvS3Endpoint  = "BACKUP_S3_ENDPOINT"
	EnvS3AccessKey = "BACKUP_S3_ACCESS_KEY"
	EnvS3SecretKey = "BACKUP_S3_SECRET_KEY"
	EnvS3Bucket    = "BACKUP_S3_BUCKET"
	EnvS3UseSSL    = "BACKUP_S3_USE_SSL"
)

// LoadDotEnv loads a local .env file if one exists. Missing files are fine;
// the environment of the process always wins.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ApplyEnv merges environment variables over cfg. Environment values win so
// that secrets never have to be written into the config file.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv(EnvSupabaseURL); v != "" {
		cfg.Supabase.URL = v
	}
	if v := os.Getenv(EnvSupabaseKey); v != "" {
		cfg.Supabase.Key = v
	}
	if v := os.Getenv(EnvGmailUser); v != "" {
		cfg.Email.User = v
	}
	if v := os.Getenv(EnvGmailAppPassword); v != "" {
		cfg.Email.Password = v
	}
	if v := os.Getenv(EnvReportRecipient); v != "" {
		cfg.Report.Recipient = v
	}

	cfg.Backup.Targets = applyDriveEnv(cfg.Backup.Targets)
	cfg.Backup.Targets = applyS3Env(cfg.Backup.Targets)
	return cfg
}

// applyDriveEnv fills Drive credentials into existing drive targets, or adds a
// drive target when credentials are present but none is configured. This keeps
// the env-only setup of the original workflow working with an empty targets list.
func applyDriveEnv(targets []TargetConfig) []TargetConfig {
	creds := os.Getenv(EnvDriveCredentials)
	folder := os.Getenv(EnvDriveFolderID)
	if creds == "" && folder == "" {
		return targets
	}

	found := false
	for i := range targets {
		if targets[i].Kind != "drive" {
			continue
		}
		found = true
		if targets[i].Drive == nil {
			targets[i].Drive = &DriveTargetConfig{}
		}
		if creds != "" {
			targets[i].Drive.Credentials = creds
		}
		if folder != "" && targets[i].Drive.FolderID == "" {
			targets[i].Drive.FolderID = folder
		}
	}
	if !found && creds != "" {
		targets = append(targets, TargetConfig{
			Kind:  "drive",
			Drive: &DriveTargetConfig{Credentials: creds, FolderID: folder},
		})
	}
	return targets
}

func applyS3Env(targets []TargetConfig) []TargetConfig {
	endpoint := os.Getenv(EnvS3Endpoint)
	if endpoint == "" {
		return targets
	}
	useSSL, _ := strconv.ParseBool(os.Getenv(EnvS3UseSSL))
	s3 := &S3TargetConfig{
		Endpoint:  endpoint,
		AccessKey: os.Getenv(EnvS3AccessKey),
		SecretKey: os.Getenv(EnvS3SecretKey),
		Bucket:    os.Getenv(EnvS3Bucket),
		UseSSL:    useSSL,
	}

	for i := range targets {
		if targets[i].Kind != "s3" {
			continue
		}
		if targets[i].S3 == nil {
			targets[i].S3 = s3
			return targets
		}
		if s3.AccessKey != "" {
			targets[i].S3.AccessKey = s3.AccessKey
		}
		if s3.SecretKey != "" {
			targets[i].S3.SecretKey = s3.SecretKey
		}
		return targets
	}
	return append(targets, TargetConfig{Kind: "s3", S3: s3})
}
