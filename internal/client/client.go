package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/cinebrain/releases/internal/config"
	"github.com/cinebrain/releases/internal/models"
	"github.com/cinebrain/releases/internal/parser"
)

// Client defines the interface for querying the CineBrain recommendation API
type Client interface {
	// FetchCategory returns the normalized items of one category. Critical categories
	// fall back to their alternate query once retries are exhausted.
	FetchCategory(ctx context.Context, category models.Category) ([]models.ContentItem, error)

	// StreamCategories fetches every category concurrently and emits one settled
	// result per category. A failing category never cancels the others.
	// The channel is closed once every category has settled.
	StreamCategories(ctx context.Context, categories []models.Category) <-chan models.CategoryResult

	FetchUpcoming(ctx context.Context, region string, categories []string, timeRange string) (*models.UpcomingReleases, error)
	FetchFavorites(ctx context.Context) ([]int, error)
	ToggleFavorite(ctx context.Context, contentID int, add bool) error

	Close() error
}

// TokenSource supplies the bearer token for outgoing requests. An empty token
// sends the request anonymously.
type TokenSource interface {
	Token() string
}

// AuthFailureHandler is invoked whenever the API answers 401.
type AuthFailureHandler func()

// Option customizes a client
type Option func(*client)

// WithTokenSource attaches bearer credentials to every request
func WithTokenSource(ts TokenSource) Option {
	return func(c *client) {
		c.tokens = ts
	}
}

// WithAuthFailureHandler registers the handler notified on 401 responses
func WithAuthFailureHandler(h AuthFailureHandler) Option {
	return func(c *client) {
		c.onAuthFailure = h
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// client implements the Client interface
type client struct {
	httpClient     *http.Client
	baseURL        string
	normalizer     parser.Normalizer
	tokens         TokenSource
	onAuthFailure  AuthFailureHandler
	limiter        *rate.Limiter
	timeout        time.Duration
	heavyTimeout   time.Duration
	maxRetries     int
	retryBaseDelay time.Duration

	inflightMu sync.Mutex
	inflight   map[string]*inflightFetch
}

// NewClient creates a new client instance with proxy configuration if provided
func NewClient(cfg *config.Config, opts ...Option) Client {
	logger := config.GetLogger()

	// Set up base transport with optional proxy
	// Clone DefaultTransport to preserve all its settings (timeouts, connection pooling, HTTP/2, etc.)
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	// Per-request deadlines come from the category; the transport itself has none.
	httpClient := &http.Client{
		Transport: newCompressionTransport(baseTransport),
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	c := &client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(cfg.APIBaseURL, "/"),
		normalizer:     parser.NewContentNormalizer(),
		limiter:        limiter,
		timeout:        config.Duration("client_timeout", cfg.ClientTimeout, 10*time.Second),
		heavyTimeout:   config.Duration("heavy_client_timeout", cfg.HeavyClientTimeout, 15*time.Second),
		maxRetries:     maxRetries,
		retryBaseDelay: config.Duration("retry_base_delay", cfg.RetryBaseDelay, time.Second),
		inflight:       make(map[string]*inflightFetch),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close cancels any fetch still in flight and releases idle connections.
func (c *client) Close() error {
	c.inflightMu.Lock()
	for name, f := range c.inflight {
		f.cancel(errClientClosed)
		delete(c.inflight, name)
	}
	c.inflightMu.Unlock()

	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}
