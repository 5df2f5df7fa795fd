// Package app wires configuration, logging, the Supabase client, jobs, the
// scheduler and the metrics endpoint into one runnable daemon.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"supaops/internal/config"
	"supaops/internal/eventbus"
	"supaops/internal/jobs"
	"supaops/internal/mailer"
	"supaops/internal/observability/metrics"
	"supaops/internal/runtime/supervisor"
	"supaops/internal/services/scheduler"
	"supaops/internal/storage"
	"supaops/internal/supabase"
	"supaops/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	mail    *mailer.Mailer
	client  *supabase.Client
	sched   *scheduler.Service
	metrics *metrics.Service
}

// New builds the app from a config file. An empty path assembles the config
// from environment variables alone.
func New(cfgPath string) (*App, error) {
	config.LoadDotEnv()

	bootLog := logx.NewConsole("INFO").With(logx.String("comp", "config"))
	cfgm := config.NewManager(bootLog)
	cfgm.SetValidator(config.Validate)

	var cfg config.Config
	var err error
	if cfgPath != "" {
		cfg, err = cfgm.Load(cfgPath)
	} else {
		cfg, err = config.Parse([]byte("{}"))
		if err == nil {
			err = cfgm.Commit(cfg)
		}
	}
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLogConfig(cfg), nil)
	log = log.With(logx.String("comp", "app"))

	// Mailer is needed for the daily report and for log alerts. Leave it nil
	// when SMTP credentials are absent; jobs.Build rejects the report job then.
	var mail *mailer.Mailer
	if cfg.Email.User != "" && cfg.Email.Password != "" {
		mail, err = mailer.New(cfg.Email)
		if err != nil {
			return nil, err
		}
		logSvc.SetAlertSender(mail)
	} else if cfg.Logging.Alerts.Enabled {
		log.Warn("log alerts enabled but smtp credentials missing; alerts disabled")
	}

	var client *supabase.Client
	if cfg.Report.Enabled || cfg.Backup.Enabled {
		client, err = supabase.New(cfg.Supabase)
		if err != nil {
			return nil, err
		}
	}

	var store storage.Store
	st, err := storage.Open(cfg.Storage)
	switch {
	case err == nil:
		store = st
		log.Info("run history enabled", logx.String("driver", cfg.Storage.Driver))
	case errors.Is(err, storage.ErrDisabled):
		// persistence is optional
	default:
		return nil, err
	}

	bus := eventbus.New()
	sched := scheduler.New(mapSchedulerConfig(cfg), log.With(logx.String("comp", "scheduler")), bus)
	metricsSvc := metrics.NewService(mapMetricsConfig(cfg), log.With(logx.String("comp", "metrics")))

	return &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		bus:     bus,
		store:   store,
		mail:    mail,
		client:  client,
		sched:   sched,
		metrics: metricsSvc,
	}, nil
}

// Done is closed when the app supervisor context is canceled.
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor, if any.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.NewSupervisor(ctx,
		supervisor.WithLogger(a.log),
		supervisor.WithCancelOnError(true))

	cfg := a.cfgm.Get()
	registered, err := a.registerJobs(a.sup.Context(), cfg)
	if err != nil {
		return err
	}

	if a.sched.Enabled() {
		a.sched.Start(a.sup.Context())
	} else if registered > 0 {
		a.log.Warn("scheduler disabled; registered jobs will never fire",
			logx.Int("jobs", registered))
	}
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		a.metrics.Start(a.sup.Context())
	}

	// Job lifecycle events fan out to run history and metrics.
	events, unsub := a.bus.Subscribe(128)
	a.sup.Go0("events.record", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.recordEvent(c, e)
			}
		}
	})

	// Hot reload fan-out.
	sub, cancelSub := a.cfgm.Subscribe()
	a.sup.Go0("config.reload", func(c context.Context) {
		defer cancelSub()
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				a.applyConfig(c, newCfg)
			}
		}
	})

	if a.cfgPath != "" {
		if err := a.cfgm.Watch(a.sup.Context(), a.cfgPath); err != nil {
			return err
		}
	}

	a.log.Info("app started",
		logx.Bool("report", cfg.Report.Enabled),
		logx.Bool("backup", cfg.Backup.Enabled))
	return nil
}

// registerJobs builds the enabled jobs and upserts their schedules. It
// returns the number of jobs registered.
func (a *App) registerJobs(ctx context.Context, cfg config.Config) (int, error) {
	js, err := jobs.Build(ctx, cfg, jobs.Deps{
		Client: a.client,
		Mailer: a.mail,
		Log:    a.log,
	})
	if err != nil {
		return 0, fmt.Errorf("build jobs: %w", err)
	}
	for _, j := range js {
		if _, err := a.sched.AddSchedule(j.Name(), j.Schedule(), jobs.Timeout(cfg, j.Name()), j.Run); err != nil {
			return 0, fmt.Errorf("schedule %s: %w", j.Name(), err)
		}
		a.log.Info("job scheduled",
			logx.String("job", j.Name()),
			logx.String("schedule", j.Schedule()))
	}
	return len(js), nil
}

func (a *App) recordEvent(ctx context.Context, e eventbus.Event) {
	je, ok := e.Data.(scheduler.JobEvent)
	if !ok {
		return
	}
	var result string
	switch e.Type {
	case eventbus.EventJobFinished:
		result = "ok"
	case eventbus.EventJobFailed:
		result = "failed"
	case eventbus.EventJobSkipped:
		result = "skipped"
	default:
		return
	}
	metrics.RecordRun(je.Name, result, je.Duration, je.Attempts)

	if a.store == nil {
		return
	}
	entry := storage.RunEntry{
		Job:      je.Name,
		Trigger:  je.Trigger,
		Started:  je.Started,
		Duration: je.Duration,
		Attempts: je.Attempts,
		Status:   result,
		Error:    je.Error,
	}
	if err := a.store.AppendRun(ctx, entry); err != nil {
		a.log.Warn("run history append failed", logx.String("job", je.Name), logx.Err(err))
	}
}

// applyConfig pushes a hot-reloaded config into the running services.
func (a *App) applyConfig(ctx context.Context, cfg config.Config) {
	a.logs.Apply(mapLogConfig(cfg))

	prevEnabled := a.sched.Enabled()
	a.sched.Apply(mapSchedulerConfig(cfg))
	if _, err := a.registerJobs(ctx, cfg); err != nil {
		a.log.Warn("job re-registration failed; keeping previous jobs", logx.Err(err))
	}
	switch {
	case prevEnabled && !cfg.Scheduler.IsEnabled():
		a.log.Info("scheduler disabled via config")
		stopCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		a.sched.Stop(stopCtx)
		cancel()
	case !prevEnabled && cfg.Scheduler.IsEnabled():
		a.log.Info("scheduler enabled via config")
		a.sched.Start(ctx)
	}

	a.metrics.Reconfigure(ctx, mapMetricsConfig(cfg))
	a.log.Info("config applied")
}

func (a *App) Stop(ctx context.Context) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping")
	a.sup.Cancel()

	// Bound each shutdown step so one component cannot stall the whole stop.
	step := func(name string, max time.Duration, fn func(context.Context) error) {
		stepCtx := ctx
		var cancel context.CancelFunc
		if max > 0 {
			if dl, ok := ctx.Deadline(); ok {
				if rem := time.Until(dl); rem < max {
					max = rem
				}
			}
			if max > 0 {
				stepCtx, cancel = context.WithTimeout(ctx, max)
				defer cancel()
			}
		}

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
			}
		case <-stepCtx.Done():
			a.log.Warn("stop step deadline reached (continuing)", logx.String("name", name))
		}
	}

	step("scheduler", 5*time.Second, func(c context.Context) error { a.sched.Stop(c); return nil })
	step("metrics", 2*time.Second, func(c context.Context) error { a.metrics.Stop(c); return nil })
	step("storage", time.Second, func(c context.Context) error {
		if a.store != nil {
			return a.store.Close()
		}
		return nil
	})
	step("supervisor", 2*time.Second, func(c context.Context) error { return a.sup.Wait(c) })

	a.log.Info("stopped")
	if a.logs != nil {
		a.logs.Close()
	}
	return nil
}
