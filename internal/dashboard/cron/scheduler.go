package cronjob

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Reconciler is the part of the session manager the scheduler drives.
type Reconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
	EvictIdle(ctx context.Context) int
}

type Scheduler struct {
	target  Reconciler
	spec    string
	timeout time.Duration
	log     zerolog.Logger
	c       *cron.Cron
}

// NewScheduler runs target on spec, a six-field (with seconds) cron
// expression. Each run is bounded by timeout.
func NewScheduler(target Reconciler, spec string, timeout time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		target:  target,
		spec:    spec,
		timeout: timeout,
		log:     log,
		c:       cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start registers the reconcile job and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.c.AddFunc(s.spec, s.run); err != nil {
		return err
	}
	s.log.Info().Str("schedule", s.spec).Msg("reconcile scheduler started")
	s.c.Start()
	return nil
}

// Stop prevents new runs and waits for a running one, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("reconcile still running at shutdown")
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	evicted := s.target.EvictIdle(ctx)
	n, err := s.target.ReconcileAll(ctx)
	ev := s.log.Info()
	if err != nil {
		ev = s.log.Error().Err(err)
	}
	ev.Int("reconciled", n).
		Int("evicted", evicted).
		Dur("took", time.Since(start)).
		Msg("reconcile run finished")
}
