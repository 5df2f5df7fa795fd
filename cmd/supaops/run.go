package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"supaops/internal/config"
	"supaops/internal/jobs"
	"supaops/internal/mailer"
	"supaops/internal/supabase"
	"supaops/pkg/logx"
)

// runCmd executes the jobs once and exits, like a cron or CI invocation.
var runCmd = &cobra.Command{
	Use:       "run [daily|weekly|all]",
	Short:     "Run jobs once and exit",
	Long: `Run the selected jobs once and exit.

  daily   send the daily Supabase report email
  weekly  export the configured tables to CSV and upload them
  all     both (the default)`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"daily", "weekly", "all"},
	Run: func(cmd *cobra.Command, args []string) {
		if err := runOnce(cmd.Context(), jobSelection(args)); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// jobSelection maps the run argument to a selection. A bare `run` means
// "all": manual dispatch fires both jobs.
func jobSelection(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "all"
}

// selectJobs overrides the config's job flags with the dispatch selection.
func selectJobs(cfg config.Config, which string) config.Config {
	cfg.Report.Enabled = which == "daily" || which == "all"
	cfg.Backup.Enabled = which == "weekly" || which == "all"
	return cfg
}

func runOnce(ctx context.Context, which string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = selectJobs(cfg, which)

	log := logx.NewConsole(cfg.Logging.Level)

	client, err := supabase.New(cfg.Supabase)
	if err != nil {
		return err
	}
	var mail *mailer.Mailer
	if cfg.Report.Enabled {
		mail, err = mailer.New(cfg.Email)
		if err != nil {
			return err
		}
	}

	js, err := jobs.Build(ctx, cfg, jobs.Deps{Client: client, Mailer: mail, Log: log})
	if err != nil {
		return err
	}

	var failed int
	for _, j := range js {
		jobCtx := ctx
		var cancel context.CancelFunc
		if t := jobs.Timeout(cfg, j.Name()); t > 0 {
			jobCtx, cancel = context.WithTimeout(ctx, t)
		}
		err := j.Run(jobCtx)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			failed++
			log.Error("job failed", logx.String("job", j.Name()), logx.Err(err))
			continue
		}
		log.Info("job done", logx.String("job", j.Name()))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(js))
	}
	return nil
}

// loadConfig reads the optional config file, folds in the environment and
// validates the result.
func loadConfig() (config.Config, error) {
	config.LoadDotEnv()

	raw := []byte("{}")
	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return config.Config{}, err
		}
		raw = b
	}
	cfg, err := config.Parse(raw)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
