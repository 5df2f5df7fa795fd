package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"supaops/internal/config"
)

// Manual dispatch contract: bare `run` fires both jobs, and the argument
// narrows the selection regardless of the config file's own flags.
func TestJobSelection(t *testing.T) {
	assert.Equal(t, "all", jobSelection(nil))
	assert.Equal(t, "all", jobSelection([]string{}))
	assert.Equal(t, "daily", jobSelection([]string{"daily"}))
	assert.Equal(t, "weekly", jobSelection([]string{"weekly"}))
	assert.Equal(t, "all", jobSelection([]string{"all"}))
}

func TestSelectJobs(t *testing.T) {
	base := config.Config{}
	base.Report.Enabled = false
	base.Backup.Enabled = false

	cases := []struct {
		which  string
		report bool
		backup bool
	}{
		{"daily", true, false},
		{"weekly", false, true},
		{"all", true, true},
	}
	for _, tc := range cases {
		got := selectJobs(base, tc.which)
		assert.Equal(t, tc.report, got.Report.Enabled, "which=%s report", tc.which)
		assert.Equal(t, tc.backup, got.Backup.Enabled, "which=%s backup", tc.which)
	}
}

// The selection also overrides config files that enable both jobs: a
// `run daily` must not trigger the backup as a side effect.
func TestSelectJobsOverridesConfigFlags(t *testing.T) {
	cfg := config.Config{}
	cfg.Report.Enabled = true
	cfg.Backup.Enabled = true

	got := selectJobs(cfg, "weekly")
	assert.False(t, got.Report.Enabled)
	assert.True(t, got.Backup.Enabled)
}
