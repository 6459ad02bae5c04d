// Package sweeper runs periodic storage hygiene: expired deletion cooldowns,
// usage events past retention, and idle rate-limiter peers.
package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/and161185/fortune-gate/internal/calendar"
	"github.com/and161185/fortune-gate/internal/metrics"
)

// CooldownPurger removes expired cooldowns.
type CooldownPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// UsagePurger removes usage events older than a cutoff.
type UsagePurger interface {
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// PeerSweeper forgets idle rate-limiter peers.
type PeerSweeper interface {
	Sweep() int
}

// Options configures a Sweeper. Zero Retention disables usage purging and a
// nil Peers skips limiter cleanup.
type Options struct {
	Spec      string
	Retention time.Duration
	Cooldowns CooldownPurger
	Usage     UsagePurger
	Peers     PeerSweeper
	Clock     calendar.Clock
	Log       *zap.Logger
	Metrics   *metrics.Metrics
}

// Sweeper schedules RunOnce on a cron spec.
type Sweeper struct {
	opts Options
	cron *cron.Cron
	log  *zap.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New constructs a Sweeper. The cron spec is evaluated in the clock's location.
func New(opts Options) *Sweeper {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		opts: opts,
		cron: cron.New(cron.WithLocation(opts.Clock.Location())),
		log:  log.Named("sweeper"),
	}
}

// Start registers the job and starts the scheduler. Jobs run with a context
// derived from ctx and canceled by Stop.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(s.opts.Spec, func() { s.RunOnce(s.jobContext()) }); err != nil {
		return fmt.Errorf("sweeper spec %q: %w", s.opts.Spec, err)
	}
	s.cron.Start()
	s.log.Info("sweeper started", zap.String("spec", s.opts.Spec), zap.Duration("retention", s.opts.Retention))
	return nil
}

// Stop cancels a running job and waits for it to return.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
	s.log.Info("sweeper stopped")
}

func (s *Sweeper) jobContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// Result summarizes one sweep.
type Result struct {
	Cooldowns int64
	Usage     int64
	Peers     int
}

// RunOnce performs one sweep. Each step is independent: a failure is logged
// and the remaining steps still run.
func (s *Sweeper) RunOnce(ctx context.Context) Result {
	var res Result

	if s.opts.Cooldowns != nil {
		n, err := s.opts.Cooldowns.PurgeExpired(ctx)
		if err != nil {
			s.log.Warn("purge cooldowns failed", zap.Error(err))
		} else {
			res.Cooldowns = n
			s.opts.Metrics.Purged("cooldown", n)
		}
	}

	if s.opts.Usage != nil && s.opts.Retention > 0 {
		cutoff := s.opts.Clock.Now().Add(-s.opts.Retention)
		n, err := s.opts.Usage.Purge(ctx, cutoff)
		if err != nil {
			s.log.Warn("purge usage failed", zap.Time("before", cutoff), zap.Error(err))
		} else {
			res.Usage = n
			s.opts.Metrics.Purged("usage", n)
		}
	}

	if s.opts.Peers != nil {
		res.Peers = s.opts.Peers.Sweep()
	}

	if res.Cooldowns > 0 || res.Usage > 0 || res.Peers > 0 {
		s.log.Info("sweep done",
			zap.Int64("cooldowns", res.Cooldowns),
			zap.Int64("usage", res.Usage),
			zap.Int("peers", res.Peers))
	}
	return res
}
