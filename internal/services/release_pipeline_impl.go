package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/cinebrain/releases/internal/cache"
	"github.com/cinebrain/releases/internal/client"
	"github.com/cinebrain/releases/internal/config"
	"github.com/cinebrain/releases/internal/metrics"
	"github.com/cinebrain/releases/internal/models"
	"github.com/cinebrain/releases/internal/ranking"
	"github.com/cinebrain/releases/internal/reporting"
)

// ErrAllCategoriesFailed is returned when no category produced a result
var ErrAllCategoriesFailed = errors.New("every category failed")

// Order selects how the chosen items are arranged
type Order int

const (
	// OrderByScore keeps selection order, best first
	OrderByScore Order = iota
	// OrderByReleaseDate lists the selection newest first, regional content first on ties
	OrderByReleaseDate
)

func (o Order) String() string {
	if o == OrderByReleaseDate {
		return "release_date"
	}
	return "score"
}

// CategorySource fetches categories concurrently, emitting one result per category
type CategorySource interface {
	StreamCategories(ctx context.Context, categories []models.Category) <-chan models.CategoryResult
}

// PipelineOptions configures a DefaultReleasePipeline. Zero values take defaults.
type PipelineOptions struct {
	// Name namespaces the cache key, "new_releases" by default
	Name       string
	Categories []models.Category
	MaxItems   int
	CacheTTL   time.Duration
	Order      Order
	// Authenticated reports whether the current viewer is signed in
	Authenticated func() bool
	Reporter      reporting.Reporter
	Now           func() time.Time
}

// DefaultReleasePipeline implements ReleasePipeline
type DefaultReleasePipeline struct {
	source CategorySource
	cache  *cache.ContentCache
	opts   PipelineOptions
}

// NewReleasePipeline creates a pipeline reading from source and caching in contentCache
func NewReleasePipeline(source CategorySource, contentCache *cache.ContentCache, opts PipelineOptions) ReleasePipeline {
	if opts.Name == "" {
		opts.Name = "new_releases"
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = 6
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Minute
	}
	if opts.Authenticated == nil {
		opts.Authenticated = func() bool { return false }
	}
	if opts.Reporter == nil {
		opts.Reporter = reporting.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &DefaultReleasePipeline{
		source: source,
		cache:  contentCache,
		opts:   opts,
	}
}

// Run implements ReleasePipeline
func (p *DefaultReleasePipeline) Run(ctx context.Context, trigger Trigger) (*PipelineResult, error) {
	logger := config.GetLogger()
	start := time.Now()
	now := p.opts.Now()
	key := p.cacheKey(now)

	if items, ok := p.cache.Get(key); ok {
		logger.Debug().
			Str("trigger", string(trigger)).
			Int("items", len(items)).
			Msg("Serving new releases from cache")
		p.observe(trigger, "cache", start)
		return &PipelineResult{Items: items, FromCache: true, Failed: []string{}, GeneratedAt: now}, nil
	}

	settled := make(map[string]models.CategoryResult, len(p.opts.Categories))
	for result := range p.source.StreamCategories(ctx, p.opts.Categories) {
		settled[result.Category.Name] = result
	}

	var (
		merged     []models.ContentItem
		failed     = []string{}
		errs       []error
		superseded bool
	)
	// Categories are merged in configured order so ties resolve the same way every run.
	for _, category := range p.opts.Categories {
		result, ok := settled[category.Name]
		if !ok {
			failed = append(failed, category.Name)
			continue
		}
		if result.Err != nil {
			failed = append(failed, category.Name)
			errs = append(errs, result.Err)
			superseded = superseded || errors.Is(result.Err, client.ErrSuperseded)
			continue
		}
		for _, item := range result.Items {
			item.Source = category.Name
			item.Weight = category.Weight
			merged = append(merged, item)
		}
	}

	if err := ctx.Err(); err != nil {
		p.observe(trigger, "canceled", start)
		return nil, fmt.Errorf("run release pipeline: %w", context.Cause(ctx))
	}
	if superseded {
		logger.Debug().Str("trigger", string(trigger)).Msg("Pipeline run superseded by a newer fetch, discarding results")
		p.observe(trigger, "superseded", start)
		return nil, fmt.Errorf("run release pipeline: %w", client.ErrSuperseded)
	}
	if len(p.opts.Categories) > 0 && len(failed) == len(p.opts.Categories) {
		err := fmt.Errorf("run release pipeline: %w", errors.Join(append([]error{ErrAllCategoriesFailed}, errs...)...))
		logger.Error().Err(err).Str("trigger", string(trigger)).Msg("All categories failed")
		p.opts.Reporter.Report(err, map[string]string{"trigger": string(trigger), "pipeline": p.opts.Name})
		p.observe(trigger, "error", start)
		return nil, err
	}

	candidates := ranking.FilterAndScore(MergeByID(merged), now)
	ranking.ApplyFinalScores(candidates)
	top := ranking.SelectTop(candidates, p.opts.MaxItems)
	if p.opts.Order == OrderByReleaseDate {
		ranking.SortByReleaseDate(top)
	}

	// A partial result is cached briefly so recovered categories show up soon.
	ttl := p.opts.CacheTTL
	status := "success"
	if len(failed) > 0 {
		ttl /= 4
		status = "partial"
	}
	p.cache.Set(key, top, ttl)
	p.observe(trigger, status, start)

	event := logger.Info()
	if len(failed) > 0 {
		event = logger.Warn().Strs("failed", failed)
	}
	event.
		Str("trigger", string(trigger)).
		Int("fetched", len(merged)).
		Int("eligible", len(candidates)).
		Int("selected", len(top)).
		Dur("ttl", ttl).
		Msg("New releases pipeline completed")

	return &PipelineResult{Items: top, Failed: failed, GeneratedAt: now}, nil
}

// Invalidate implements ReleasePipeline
func (p *DefaultReleasePipeline) Invalidate() {
	p.cache.Invalidate(p.cacheKey(p.opts.Now()))
}

func (p *DefaultReleasePipeline) cacheKey(now time.Time) string {
	names := lo.Map(p.opts.Categories, func(c models.Category, _ int) string { return c.Name })
	return cache.BuildKey(p.opts.Name, now, map[string]string{
		"categories": strings.Join(names, ","),
		"limit":      strconv.Itoa(p.opts.MaxItems),
		"order":      p.opts.Order.String(),
	}, p.opts.Authenticated())
}

func (p *DefaultReleasePipeline) observe(trigger Trigger, status string, start time.Time) {
	metrics.PipelineRunsTotal.WithLabelValues(string(trigger), status).Inc()
	metrics.PipelineDuration.WithLabelValues(string(trigger)).Observe(time.Since(start).Seconds())
}

// MergeByID collapses items sharing an ID, keeping the one from the
// highest-weight source. Ties keep the first occurrence; order is preserved.
func MergeByID(items []models.ContentItem) []models.ContentItem {
	index := make(map[int]int, len(items))
	merged := make([]models.ContentItem, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.ID]; ok {
			if item.Weight > merged[i].Weight {
				merged[i] = item
			}
			continue
		}
		index[item.ID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// zerologCacheLogger adapts a zerolog.Logger to cache.Logger
type zerologCacheLogger struct {
	logger zerolog.Logger
}

func (l *zerologCacheLogger) Error(msg string, err error) {
	l.logger.Error().Err(err).Msg(msg)
}

// NewCacheLogger returns a cache.Logger writing to the application logger
func NewCacheLogger() cache.Logger {
	return &zerologCacheLogger{logger: config.GetLogger()}
}
