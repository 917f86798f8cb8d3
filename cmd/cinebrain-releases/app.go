package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/cinebrain/releases/internal/cache"
	"github.com/cinebrain/releases/internal/client"
	"github.com/cinebrain/releases/internal/config"
	"github.com/cinebrain/releases/internal/favorites"
	"github.com/cinebrain/releases/internal/reporting"
	"github.com/cinebrain/releases/internal/services"
	"github.com/cinebrain/releases/internal/session"
)

// app holds the long-lived components shared by every command
type app struct {
	cfg          *config.Config
	session      session.Store
	store        cache.Cache
	contentCache *cache.ContentCache
	client       client.Client
	favorites    *favorites.Store
	pipeline     services.ReleasePipeline
	reporter     reporting.Reporter
}

type appOptions struct {
	order    services.Order
	maxItems int
}

func newApp(cfg *config.Config, opts appOptions) (*app, error) {
	logger := config.GetLogger()

	reporter, err := reporting.New(reporting.Options{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     resolvedVersion(),
	})
	if err != nil {
		return nil, err
	}

	var sess session.Store
	if cfg.Session.Path != "" {
		sess, err = session.NewBadgerStore(cfg.Session.Path)
		if err != nil {
			return nil, fmt.Errorf("open session: %w", err)
		}
	} else {
		sess = session.NewMemoryStore()
	}

	cacheTTL := config.Duration("cache.ttl", cfg.Cache.TTL, 30*time.Minute)
	store, err := cache.New(cfg.Cache.Provider, cache.ProviderConfig{
		Size:          cfg.Cache.Size,
		TTL:           24 * time.Hour,
		Logger:        services.NewCacheLogger(),
		RedisAddress:  cfg.Cache.RedisAddress,
		RedisPassword: cfg.Cache.RedisPassword,
		RedisDB:       cfg.Cache.RedisDB,
		BadgerPath:    cfg.Cache.BadgerPath,
		Group:         "content",
	})
	if err != nil {
		_ = sess.Close()
		return nil, fmt.Errorf("create %s cache: %w", cfg.Cache.Provider, err)
	}

	a := &app{
		cfg:          cfg,
		session:      sess,
		store:        store,
		contentCache: cache.NewContentCache(store),
		reporter:     reporter,
	}

	onAuthFailure := session.OnAuthFailure(sess)
	a.client = client.NewClient(cfg,
		client.WithTokenSource(sess),
		client.WithAuthFailureHandler(func() {
			onAuthFailure()
			if a.favorites != nil {
				a.favorites.Clear()
			}
		}),
	)
	a.favorites = favorites.NewStore(a.client, sess)

	maxItems := opts.maxItems
	if maxItems <= 0 {
		maxItems = cfg.Carousel.MaxItems
	}
	a.pipeline = services.NewReleasePipeline(a.client, a.contentCache, services.PipelineOptions{
		Categories: services.DefaultCategories(
			cfg.Region,
			config.Duration("light_client_timeout", cfg.LightClientTimeout, 8*time.Second),
			config.Duration("heavy_client_timeout", cfg.HeavyClientTimeout, 15*time.Second),
		),
		MaxItems:      maxItems,
		CacheTTL:      cacheTTL,
		Order:         opts.order,
		Authenticated: func() bool { return session.IsAuthenticated(sess) },
		Reporter:      reporter,
	})

	logger.Debug().
		Str("cache_provider", cfg.Cache.Provider).
		Bool("persistent_session", cfg.Session.Path != "").
		Bool("authenticated", session.IsAuthenticated(sess)).
		Msg("Application components ready")
	return a, nil
}

func (a *app) Close() error {
	a.reporter.Flush(2 * time.Second)
	return errors.Join(a.client.Close(), a.store.Close(), a.session.Close())
}
