package main

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "supaops",
	Short: "Supabase reporting and backup automation",
	Long: `supaops emails a daily statistics report from a Supabase project and
ships weekly CSV table backups to Google Drive or S3 compatible storage.

Configuration comes from a YAML or JSON file plus environment variables
(SUPABASE_URL, SUPABASE_KEY, GMAIL_USER, GMAIL_APP_PASSWORD,
REPORT_RECIPIENT, GOOGLE_DRIVE_CREDENTIALS, ...). Environment values
override the file.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (yaml or json)")
}
