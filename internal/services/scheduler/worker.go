package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"supaops/internal/eventbus"
	"supaops/pkg/logx"
)

func (s *Service) enqueue(e execution) {
	s.mu.Lock()
	q := s.queue
	s.mu.Unlock()
	if q == nil {
		s.log.Debug("scheduler not running; dropping job", logx.String("job", e.name))
		return
	}
	select {
	case q <- e:
	default:
		s.log.Warn("scheduler queue full; dropping job",
			logx.String("job", e.name), logx.Int("queue_len", len(q)), logx.Int("queue_cap", cap(q)))
	}
}

func (s *Service) worker(ctx context.Context, stopCh <-chan struct{}, queue <-chan execution) {
	for {
		// Fast-exit check so a closed stopCh wins over queued work.
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case e := <-queue:
			s.execOne(ctx, stopCh, e)
		}
	}
}

func (s *Service) execOne(ctx context.Context, stopCh <-chan struct{}, e execution) {
	start := time.Now()
	s.publishEvent(eventbus.EventJobStarted, JobEvent{
		ID: e.id, Name: e.name, Trigger: e.trigger, Started: start,
	})

	// Mark running for overlap control (shared state between cron invocations).
	if e.state != nil {
		e.state.mu.Lock()
		e.state.running = true
		e.state.mu.Unlock()
		defer func() {
			e.state.mu.Lock()
			e.state.running = false
			e.state.mu.Unlock()
		}()
	}

	// Copy scheduler config to avoid data races with Apply().
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()

	opt := e.opt.withDefaults(cfg)
	retries := opt.RetryMax
	if retries < 0 {
		retries = 0
	}

	var err error
	attempts := 0
	maxAttempts := 1 + retries
attemptLoop:
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attempts = attempt
		// Per-attempt timeout (a timed-out first attempt must not poison retries).
		runCtx := ctx
		var cancel func()
		if e.timeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		}
		err = e.run(runCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil || attempt >= maxAttempts {
			break
		}

		delay := backoffDelay(opt, attempt) // attempt=1 => first retry
		if delay > 0 {
			s.log.Debug("job retry scheduled",
				logx.String("job", e.name), logx.Int("attempt", attempt+1),
				logx.Duration("delay", delay), logx.Err(err))
			tmr := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !tmr.Stop() {
					<-tmr.C
				}
				err = ctx.Err()
				break attemptLoop
			case <-stopCh:
				if !tmr.Stop() {
					<-tmr.C
				}
				err = errors.New("scheduler stopped")
				break attemptLoop
			case <-tmr.C:
			}
		}
	}

	dur := time.Since(start)
	item := HistoryItem{
		ID:       e.id,
		Name:     e.name,
		Started:  start,
		Duration: dur,
		Attempts: attempts,
	}
	if err != nil {
		item.Error = err.Error()
		s.log.Warn("job failed",
			logx.String("job", e.name), logx.Err(err),
			logx.Duration("dur", dur), logx.Int("attempts", attempts))
		s.publishEvent(eventbus.EventJobFailed, JobEvent{
			ID: e.id, Name: e.name, Trigger: e.trigger,
			Started: start, Duration: dur, Attempts: attempts, Error: item.Error,
		})
	} else {
		s.log.Info("job completed",
			logx.String("job", e.name), logx.Duration("dur", dur), logx.Int("attempts", attempts))
		s.publishEvent(eventbus.EventJobFinished, JobEvent{
			ID: e.id, Name: e.name, Trigger: e.trigger,
			Started: start, Duration: dur, Attempts: attempts,
		})
	}

	s.hmu.Lock()
	defer s.hmu.Unlock()
	s.history = append(s.history, item)
	historySize := cfg.HistorySize
	// A zero history_size must not mean unbounded growth in a long-running daemon.
	if historySize <= 0 {
		historySize = 200
	}
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
}

func (s *Service) publishEvent(typ string, ev JobEvent) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{Type: typ, Time: time.Now(), Data: ev})
}

func parseHHMM(s string) (hour int, minute int, err error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}

func backoffDelay(opt JobOptions, retry int) time.Duration {
	base := opt.RetryBase
	if base <= 0 {
		base = 2 * time.Second
	}
	maxD := opt.RetryMaxDelay
	if maxD <= 0 {
		maxD = time.Minute
	}
	j := opt.RetryJitter
	if j <= 0 {
		j = 0.2
	}
	// exponential growth
	d := base
	for i := 1; i < retry; i++ {
		d *= 2
		if d > maxD {
			d = maxD
			break
		}
	}
	// jitter in [1-j, 1+j]
	r := (rand.Float64()*2 - 1) * j
	d = time.Duration(float64(d) * (1 + r))
	if d < 0 {
		d = 0
	}
	if d > maxD {
		d = maxD
	}
	return d
}
