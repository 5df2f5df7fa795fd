package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supaops/internal/config"
	"supaops/internal/report"
	"supaops/pkg/logx"
)

type fakeStats struct {
	err error
}

func (f *fakeStats) TotalRows(context.Context, string) (int64, error) {
	return 100, f.err
}
func (f *fakeStats) CountWhereEq(context.Context, string, string, string) (int64, error) {
	return 5, f.err
}
func (f *fakeStats) CountSince(context.Context, string, string, string) (int64, error) {
	return 3, f.err
}
func (f *fakeStats) FirstValue(context.Context, string, string) (int64, error) {
	return 42, f.err
}

type fakeSender struct {
	to, subject, body string
	err               error
	sends             int
}

func (f *fakeSender) SendHTML(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sends++
	f.to, f.subject, f.body = to, subject, body
	return nil
}

func newDailyJob(t *testing.T, src report.StatsSource, sender HTMLSender) *DailyReport {
	t.Helper()
	cfg := config.Config{}.WithDefaults()
	b := report.NewBuilder(src, cfg.Report)
	j := NewDailyReport(b, sender, "boss@example.com", cfg.Report.Schedule, logx.Nop())
	j.now = func() time.Time { return time.Date(2026, 8, 29, 18, 0, 0, 0, time.UTC) }
	return j
}

func TestDailyReportRun(t *testing.T) {
	sender := &fakeSender{}
	j := newDailyJob(t, &fakeStats{}, sender)

	require.NoError(t, j.Run(context.Background()))
	assert.Equal(t, 1, sender.sends)
	assert.Equal(t, "boss@example.com", sender.to)
	assert.Equal(t, "Supabase Daily Report - 2026-08-29", sender.subject)
	assert.Contains(t, sender.body, "Total Apollo Credits Saved: 42")
}

func TestDailyReportGatherFailureSendsNothing(t *testing.T) {
	sender := &fakeSender{}
	j := newDailyJob(t, &fakeStats{err: errors.New("supabase down")}, sender)

	err := j.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supabase down")
	assert.Zero(t, sender.sends)
}

func TestDailyReportSendFailure(t *testing.T) {
	j := newDailyJob(t, &fakeStats{}, &fakeSender{err: errors.New("smtp auth failed")})
	err := j.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp auth failed")
}

func TestJobIdentity(t *testing.T) {
	cfg := config.Config{}.WithDefaults()
	j := newDailyJob(t, &fakeStats{}, &fakeSender{})
	assert.Equal(t, "daily-report", j.Name())
	assert.Equal(t, cfg.Report.Schedule, j.Schedule())
}

func TestBuildRequiresRecipient(t *testing.T) {
	cfg := config.Config{}.WithDefaults()
	cfg.Report.Enabled = true
	cfg.Report.Recipient = ""

	_, err := Build(context.Background(), cfg, Deps{Log: logx.Nop()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORT_RECIPIENT")
}

func TestBuildNothingEnabled(t *testing.T) {
	cfg := config.Config{}.WithDefaults()
	js, err := Build(context.Background(), cfg, Deps{Log: logx.Nop()})
	require.NoError(t, err)
	assert.Empty(t, js)
}

func TestTimeoutDefaults(t *testing.T) {
	cfg := config.Config{}.WithDefaults()
	assert.Equal(t, 5*time.Minute, Timeout(cfg, "daily-report"))
	assert.Equal(t, 30*time.Minute, Timeout(cfg, "weekly-backup"))

	cfg.Backup.Timeout = "10m"
	assert.Equal(t, 10*time.Minute, Timeout(cfg, "weekly-backup"))
}
