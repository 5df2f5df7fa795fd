package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supaops/internal/config"
	"supaops/internal/eventbus"
	"supaops/internal/services/scheduler"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "supaops.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNewWithMinimalConfig(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  console: false
scheduler:
  enabled: false
`)
	t.Setenv(config.EnvGmailUser, "")
	t.Setenv(config.EnvGmailAppPassword, "")

	a, err := New(path)
	require.NoError(t, err)

	cfg := a.cfgm.Get()
	assert.False(t, cfg.Report.Enabled)
	assert.False(t, cfg.Backup.Enabled)
	assert.Nil(t, a.mail)
	assert.Nil(t, a.client)
}

func TestNewRejectsBrokenConfig(t *testing.T) {
	path := writeConfig(t, "report:\n  schedule: \"not a cron\"\n")
	_, err := New(path)
	require.Error(t, err)
}

func TestStartRecordsJobEvents(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
logging:
  level: warn
  console: false
scheduler:
  enabled: false
storage:
  driver: file
  path: `+dir+`
`)
	a, err := New(path)
	require.NoError(t, err)
	require.NotNil(t, a.store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx))

	started := time.Now().Add(-time.Second)
	a.bus.Publish(eventbus.Event{
		Type: eventbus.EventJobFinished,
		Time: time.Now(),
		Data: scheduler.JobEvent{
			ID:       "run-1",
			Name:     "daily-report",
			Trigger:  "cron",
			Started:  started,
			Duration: time.Second,
			Attempts: 1,
		},
	})

	assert.Eventually(t, func() bool {
		runs, err := a.store.RecentRuns(context.Background(), 10)
		return err == nil && len(runs) == 1
	}, 2*time.Second, 20*time.Millisecond)

	runs, err := a.store.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "daily-report", runs[0].Job)
	assert.Equal(t, "ok", runs[0].Status)
	assert.Equal(t, 1, runs[0].Attempts)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, a.Stop(stopCtx))
}

func TestStopBeforeStartIsNoop(t *testing.T) {
	path := writeConfig(t, "scheduler:\n  enabled: false\n")
	a, err := New(path)
	require.NoError(t, err)
	require.NoError(t, a.Stop(context.Background()))
}
