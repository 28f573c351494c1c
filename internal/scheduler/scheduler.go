package scheduler

import (
	"context"
	"fmt"
	"time"

	"marketapi/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

// Closer sends the closing notice for briefs whose deadline has passed.
type Closer interface {
	NotifyClosed(ctx context.Context) (int, error)
}

// Scheduler runs the brief closing job on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	closer  Closer
	log     *logger.Logger
	timeout time.Duration
	closed  prometheus.Counter
	runs    *prometheus.CounterVec

	ctx    context.Context
	cancel context.CancelFunc
}

// New parses schedule (six fields, seconds first) and registers the job metrics on reg.
func New(schedule string, closer Closer, reg prometheus.Registerer, log *logger.Logger) (*Scheduler, error) {
	log = log.Component("scheduler")
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		closer:  closer,
		log:     log,
		timeout: time.Minute,
		closed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_briefs_closed_total",
			Help: "Total number of closed briefs whose closing notice was sent.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_brief_close_runs_total",
			Help: "Total number of brief closing runs by result.",
		}, []string{"result"}),
		ctx:    ctx,
		cancel: cancel,
	}
	s.cron = cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cronLogger{log: log}),
		cron.WithChain(cron.Recover(cronLogger{log: log}), cron.SkipIfStillRunning(cronLogger{log: log})),
	)

	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(s.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("parse brief close schedule %q: %w", schedule, err)
	}
	for _, c := range []prometheus.Collector{s.closed, s.runs} {
		if err := reg.Register(c); err != nil {
			cancel()
			return nil, err
		}
	}
	return s, nil
}

// Start runs the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "event", "scheduler_start", "entries", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop cancels the running job and waits for it to return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped", "event", "scheduler_stop")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce sends the pending closing notices.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.closer.NotifyClosed(ctx)
	s.closed.Add(float64(n))
	if err != nil {
		s.runs.WithLabelValues("error").Inc()
		s.log.Error("brief close run failed", "event", "brief_close_failed", "notified", n, "error", err)
		return
	}
	s.runs.WithLabelValues("ok").Inc()
	if n > 0 {
		s.log.Info("closed briefs notified", "event", "brief_close", "notified", n, "duration_ms", time.Since(start).Milliseconds())
	}
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
