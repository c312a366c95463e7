package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/filecache/internal/cache"
	"github.com/charlesng35/filecache/internal/monitoring"
	"github.com/charlesng35/filecache/pkg/logger"
	"github.com/charlesng35/filecache/pkg/metrics"
)

const (
	defaultRetention = 30 * 24 * time.Hour
	defaultSchedule  = "@hourly"
)

// Expirer is the part of the cache engine the sweeper drives.
type Expirer interface {
	DeleteOlderThan(ctx context.Context, age time.Duration) (cache.EvictionFailures, error)
}

// Sweeper periodically evicts cache entries older than the retention window.
type Sweeper struct {
	cache     Expirer
	cron      *cron.Cron
	log       *zap.Logger
	retention time.Duration
	schedule  string
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithRetention sets the maximum entry age. Zero disables sweeping.
func WithRetention(age time.Duration) Option {
	return func(s *Sweeper) {
		if age >= 0 {
			s.retention = age
		}
	}
}

// WithSchedule overrides the cron specification for the sweep.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper with a 30 day retention swept hourly.
func NewSweeper(c Expirer, opts ...Option) *Sweeper {
	s := &Sweeper{
		cache:     c,
		retention: defaultRetention,
		schedule:  defaultSchedule,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return s
}

// Enabled reports whether Start will schedule anything.
func (s *Sweeper) Enabled() bool {
	return s.cache != nil && s.retention > 0
}

// Start registers the sweep with the cron scheduler and launches it.
func (s *Sweeper) Start() error {
	if !s.Enabled() {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("cache sweep incomplete", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("cache sweeper started",
		zap.String("schedule", s.schedule),
		zap.Duration("retention", s.retention),
	)
	return nil
}

// Stop halts the scheduler. The returned context is done once a running sweep finishes.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce evicts expired entries immediately. Entries whose files could not
// be removed are folded into the returned error.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	failures, err := s.cache.DeleteOlderThan(ctx, s.retention)
	combined := multierr.Append(err, failures.Err())

	result := monitoring.SweepSuccess
	switch {
	case err != nil:
		result = monitoring.SweepError
	case len(failures) > 0:
		result = monitoring.SweepPartial
	}

	message := ""
	if combined != nil {
		message = combined.Error()
	}
	metrics.SweepRuns.WithLabelValues(result).Inc()
	monitoring.RecordSweep(result, message, time.Since(start))

	return combined
}
