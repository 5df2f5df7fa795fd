package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supaops/internal/config"
)

func TestOpenDisabled(t *testing.T) {
	_, err := Open(nil)
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = Open(&config.StorageConfig{})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(&config.StorageConfig{Driver: "redis", Path: t.TempDir()})
	assert.Error(t, err)
}

func TestFileStoreAppendAndRead(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(&config.StorageConfig{Driver: "file", Path: dir})
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, st.AppendRun(ctx, RunEntry{
			Job:      "daily-report",
			Trigger:  "cron",
			Started:  base.Add(time.Duration(i) * 24 * time.Hour),
			Duration: 1200 * time.Millisecond,
			Attempts: 1,
			Status:   "ok",
		}))
	}
	require.NoError(t, st.AppendRun(ctx, RunEntry{
		Job:     "weekly-backup",
		Trigger: "manual",
		Started: base.Add(72 * time.Hour),
		Status:  "failed",
		Error:   "drive upload: quota exceeded",
	}))

	runs, err := st.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "weekly-backup", runs[0].Job)
	assert.Equal(t, "failed", runs[0].Status)
	assert.Equal(t, "daily-report", runs[1].Job)

	all, err := st.RecentRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestFileStoreSkipsCorruptLines(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(&config.StorageConfig{Driver: "file", Path: dir})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, st.AppendRun(ctx, RunEntry{Job: "daily-report", Status: "ok", Started: time.Now()}))
	require.NoError(t, st.Close())

	path := filepath.Join(dir, "runs.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{torn write\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	st2, err := Open(&config.StorageConfig{Driver: "file", Path: dir})
	require.NoError(t, err)
	defer st2.Close()

	runs, err := st2.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "daily-report", runs[0].Job)
}
