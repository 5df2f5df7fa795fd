package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supaops/internal/eventbus"
	"supaops/pkg/logx"
)

func newTestService(t *testing.T, cfg Config) (*Service, eventbus.Bus) {
	t.Helper()
	bus := eventbus.New()
	svc := New(cfg, logx.Nop(), bus)
	return svc, bus
}

func TestIntervalJobRuns(t *testing.T) {
	svc, _ := newTestService(t, Config{Enabled: true, Workers: 1, Timezone: "UTC"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop(context.Background())

	var runs atomic.Int32
	_, err := svc.AddInterval("tick", 50*time.Millisecond, time.Second, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 3*time.Second, 20*time.Millisecond)

	snap := svc.Snapshot()
	require.NotEmpty(t, snap.Schedules)
	assert.Equal(t, "tick", snap.Schedules[0].Name)
	assert.NotEmpty(t, snap.History)
}

func TestRetryThenSuccess(t *testing.T) {
	svc, bus := newTestService(t, Config{Enabled: true, Workers: 1, Timezone: "UTC"})

	events, unsub := bus.Subscribe(16)
	defer unsub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop(context.Background())

	var calls atomic.Int32
	opt := JobOptions{RetryMax: 2, RetryBase: 10 * time.Millisecond, RetryMaxDelay: 20 * time.Millisecond}
	svc.enqueue(execution{
		id: "test", name: "flaky", trigger: "manual",
		timeout: time.Second, run: func(ctx context.Context) error {
			if calls.Add(1) < 3 {
				return errors.New("transient")
			}
			return nil
		},
		opt: opt, state: &runState{},
	})

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type != eventbus.EventJobFinished {
				continue
			}
			je, ok := ev.Data.(JobEvent)
			require.True(t, ok)
			assert.Equal(t, "flaky", je.Name)
			assert.Equal(t, 3, je.Attempts)
			return
		case <-deadline:
			t.Fatal("job never finished")
		}
	}
}

func TestExhaustedRetriesPublishFailure(t *testing.T) {
	svc, bus := newTestService(t, Config{Enabled: true, Workers: 1, Timezone: "UTC"})

	events, unsub := bus.Subscribe(16)
	defer unsub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop(context.Background())

	svc.enqueue(execution{
		id: "test", name: "doomed", trigger: "cron",
		run: func(ctx context.Context) error { return errors.New("permanent") },
		opt: JobOptions{RetryMax: 1, RetryBase: 5 * time.Millisecond, RetryMaxDelay: 10 * time.Millisecond},
	})

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type != eventbus.EventJobFailed {
				continue
			}
			je := ev.Data.(JobEvent)
			assert.Equal(t, 2, je.Attempts)
			assert.Contains(t, je.Error, "permanent")
			return
		case <-deadline:
			t.Fatal("no failure event")
		}
	}
}

// Jobs registered without options must not overlap themselves: a trigger that
// fires while the previous run is still in flight is skipped and announced on
// the bus.
func TestDefaultOptionsSkipOverlappingRuns(t *testing.T) {
	svc, bus := newTestService(t, Config{Enabled: true, Workers: 2, Timezone: "UTC"})

	events, unsub := bus.Subscribe(32)
	defer unsub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop(context.Background())

	var inFlight, peak atomic.Int32
	_, err := svc.AddSchedule("slow-backup", "@every 1s", 10*time.Second, func(ctx context.Context) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer inFlight.Add(-1)
		select {
		case <-time.After(2500 * time.Millisecond):
		case <-ctx.Done():
		}
		return nil
	})
	require.NoError(t, err)

	deadline := time.After(6 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type != eventbus.EventJobSkipped {
				continue
			}
			je, ok := ev.Data.(JobEvent)
			require.True(t, ok)
			assert.Equal(t, "slow-backup", je.Name)
			assert.Equal(t, int32(1), peak.Load(), "second trigger must not run concurrently")
			return
		case <-deadline:
			t.Fatal("no skip event for an in-flight job")
		}
	}
}

func TestUpsertByNameReplacesSchedule(t *testing.T) {
	svc, _ := newTestService(t, Config{Enabled: true, Workers: 1, Timezone: "UTC"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop(context.Background())

	_, err := svc.AddCron("daily-report", "0 18 * * *", 0, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	_, err = svc.AddCron("daily-report", "30 6 * * *", 0, func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	snap := svc.Snapshot()
	require.Len(t, snap.Schedules, 1)
	assert.Equal(t, "30 6 * * *", snap.Schedules[0].Spec)

	assert.True(t, svc.Remove("daily-report"))
	assert.Empty(t, svc.Snapshot().Schedules)
}

// The default crons must hit 18:00 every day (daily) and only Fridays (weekly).
func TestDefaultCronFireTimes(t *testing.T) {
	t.Parallel()
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	daily, err := parser.Parse("0 18 * * *")
	require.NoError(t, err)
	weekly, err := parser.Parse("0 18 * * 5")
	require.NoError(t, err)

	from := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC) // a Monday
	seenDays := map[time.Weekday]bool{}
	next := from
	for i := 0; i < 14; i++ {
		next = daily.Next(next)
		assert.Equal(t, 18, next.Hour())
		assert.Equal(t, 0, next.Minute())
		seenDays[next.Weekday()] = true
	}
	assert.Len(t, seenDays, 7, "daily schedule must cover every weekday")

	next = from
	for i := 0; i < 4; i++ {
		next = weekly.Next(next)
		assert.Equal(t, time.Friday, next.Weekday())
		assert.Equal(t, 18, next.Hour())
	}
}

func TestAddBeforeStartRegistersOnStart(t *testing.T) {
	svc, _ := newTestService(t, Config{Enabled: true, Workers: 1, Timezone: "UTC"})

	var runs atomic.Int32
	_, err := svc.AddInterval("early", 50*time.Millisecond, time.Second, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop(context.Background())

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}
