package carousel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/cinebrain/releases/internal/client"
	"github.com/cinebrain/releases/internal/config"
	"github.com/cinebrain/releases/internal/services"
)

// Default refresh cadence
const (
	DefaultSoftInterval = 30 * time.Minute
	DefaultHardInterval = 6 * time.Hour
	DefaultRunTimeout   = 2 * time.Minute
)

// RefresherOptions configures a Refresher. Zero values take defaults.
type RefresherOptions struct {
	// SoftInterval reruns the pipeline, reusing a fresh cached selection
	SoftInterval time.Duration
	// HardInterval drops the cached selection before rerunning
	HardInterval time.Duration
	RunTimeout   time.Duration
	// Sweeper, when set, reclaims expired cache entries after each soft refresh
	Sweeper Sweeper
}

// Sweeper removes expired entries and returns how many it removed
type Sweeper interface {
	ClearExpired() int
}

// Refresher reruns the release pipeline on a schedule and hands the result to
// a Controller. A failed run leaves the controller's content untouched.
type Refresher struct {
	pipeline   services.ReleasePipeline
	controller *Controller
	opts       RefresherOptions

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	baseCtx context.Context
}

// NewRefresher creates a stopped refresher
func NewRefresher(pipeline services.ReleasePipeline, controller *Controller, opts RefresherOptions) *Refresher {
	if opts.SoftInterval <= 0 {
		opts.SoftInterval = DefaultSoftInterval
	}
	if opts.HardInterval <= 0 {
		opts.HardInterval = DefaultHardInterval
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = DefaultRunTimeout
	}
	return &Refresher{
		pipeline:   pipeline,
		controller: controller,
		opts:       opts,
	}
}

// Load runs the pipeline for the first time. On failure the controller falls
// back to placeholder content and the error is returned.
func (r *Refresher) Load(ctx context.Context) error {
	return r.run(ctx, services.TriggerInitial)
}

// RefreshNow reruns the pipeline immediately. A hard refresh bypasses the cache.
func (r *Refresher) RefreshNow(ctx context.Context, hard bool) error {
	trigger := services.TriggerSoft
	if hard {
		trigger = services.TriggerHard
		r.pipeline.Invalidate()
	}
	return r.run(ctx, trigger)
}

func (r *Refresher) run(ctx context.Context, trigger services.Trigger) error {
	logger := config.GetLogger()

	result, err := r.pipeline.Run(ctx, trigger)
	if err != nil {
		if errors.Is(err, client.ErrSuperseded) {
			logger.Debug().Str("trigger", string(trigger)).Msg("Refresh superseded by a newer one")
			return nil
		}
		logger.Error().Err(err).Str("trigger", string(trigger)).Msg("Refresh failed, keeping current carousel content")
		r.controller.EnsureFallback()
		return err
	}

	if len(result.Items) == 0 {
		r.controller.EnsureFallback()
		return nil
	}
	reset := r.controller.ApplyRefresh(result.Items)
	logger.Debug().
		Str("trigger", string(trigger)).
		Bool("from_cache", result.FromCache).
		Bool("reset", reset).
		Msg("Refresh applied")
	return nil
}

// Start schedules soft and hard refreshes until ctx is done or Stop is called.
// Starting a running refresher is a no-op.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return nil
	}

	logger := cronLogger{logger: config.GetLogger()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(every(r.opts.SoftInterval), func() { r.scheduled(false) }); err != nil {
		return fmt.Errorf("schedule soft refresh: %w", err)
	}
	if _, err := c.AddFunc(every(r.opts.HardInterval), func() { r.scheduled(true) }); err != nil {
		return fmt.Errorf("schedule hard refresh: %w", err)
	}

	r.baseCtx, r.cancel = context.WithCancel(ctx)
	r.cron = c
	c.Start()

	logger.logger.Info().
		Dur("soft_interval", r.opts.SoftInterval).
		Dur("hard_interval", r.opts.HardInterval).
		Msg("Background refresh started")
	return nil
}

// Stop cancels any running refresh and waits for it to return
func (r *Refresher) Stop() {
	r.mu.Lock()
	c, cancel := r.cron, r.cancel
	r.cron, r.cancel = nil, nil
	r.mu.Unlock()
	if c == nil {
		return
	}

	cancel()
	<-c.Stop().Done()
	logger := config.GetLogger()
	logger.Info().Msg("Background refresh stopped")
}

func (r *Refresher) scheduled(hard bool) {
	r.mu.Lock()
	base := r.baseCtx
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(base, r.opts.RunTimeout)
	defer cancel()
	// Errors are logged and reported by run and the pipeline.
	_ = r.RefreshNow(ctx, hard)

	if !hard && r.opts.Sweeper != nil {
		if removed := r.opts.Sweeper.ClearExpired(); removed > 0 {
			logger := config.GetLogger()
			logger.Debug().Int("removed", removed).Msg("Swept expired cache entries")
		}
	}
}

func every(d time.Duration) string {
	return "@every " + d.String()
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
