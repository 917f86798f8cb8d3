package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/goccy/go-json"

	"github.com/cinebrain/releases/internal/apperrors"
	"github.com/cinebrain/releases/internal/config"
	"github.com/cinebrain/releases/internal/metrics"
	"github.com/cinebrain/releases/internal/models"
)

var (
	// ErrSuperseded marks a category fetch canceled because a newer fetch of the
	// same category started. Its result must not be used.
	ErrSuperseded = errors.New("superseded by a newer fetch of the same category")

	errClientClosed = errors.New("client closed")
)

// inflightFetch is the cancellation handle of the current fetch of one category
type inflightFetch struct {
	cancel context.CancelCauseFunc
}

// track registers a new fetch of name, canceling the one already in flight.
// The returned release func must be called when the fetch settles.
func (c *client) track(ctx context.Context, name string) (context.Context, func()) {
	fetchCtx, cancel := context.WithCancelCause(ctx)
	f := &inflightFetch{cancel: cancel}

	c.inflightMu.Lock()
	if prev, ok := c.inflight[name]; ok {
		prev.cancel(ErrSuperseded)
	}
	c.inflight[name] = f
	c.inflightMu.Unlock()

	return fetchCtx, func() {
		c.inflightMu.Lock()
		if c.inflight[name] == f {
			delete(c.inflight, name)
		}
		c.inflightMu.Unlock()
		cancel(nil)
	}
}

func superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrSuperseded)
}

// FetchCategory implements Client
func (c *client) FetchCategory(ctx context.Context, category models.Category) ([]models.ContentItem, error) {
	items, _, err := c.fetchCategory(ctx, category)
	return items, err
}

func (c *client) fetchCategory(ctx context.Context, category models.Category) ([]models.ContentItem, bool, error) {
	logger := config.GetLogger()
	fetchCtx, release := c.track(ctx, category.Name)
	defer release()

	items, err := c.fetchOnce(fetchCtx, category)
	if err == nil {
		metrics.CategoryFetchesTotal.WithLabelValues(category.Name, "success").Inc()
		return items, false, nil
	}
	if superseded(fetchCtx) {
		metrics.CategoryFetchesTotal.WithLabelValues(category.Name, "canceled").Inc()
		return nil, false, fmt.Errorf("fetch category %s: %w", category.Name, ErrSuperseded)
	}

	if category.Critical && category.Fallback != nil && ctx.Err() == nil && !errors.Is(err, &apperrors.ErrAuth{}) {
		logger.Warn().Err(err).Str("category", category.Name).Str("fallback", category.Fallback.Name).Msg("Critical category failed, using fallback query")

		fallbackItems, fallbackErr := c.fetchOnce(fetchCtx, *category.Fallback)
		if fallbackErr == nil {
			metrics.CategoryFetchesTotal.WithLabelValues(category.Name, "fallback").Inc()
			return fallbackItems, true, nil
		}
		if superseded(fetchCtx) {
			metrics.CategoryFetchesTotal.WithLabelValues(category.Name, "canceled").Inc()
			return nil, false, fmt.Errorf("fetch category %s: %w", category.Name, ErrSuperseded)
		}
		err = errors.Join(err, fallbackErr)
	}

	status := "error"
	if errors.Is(err, context.Canceled) {
		status = "canceled"
	}
	metrics.CategoryFetchesTotal.WithLabelValues(category.Name, status).Inc()
	return nil, false, fmt.Errorf("fetch category %s: %w", category.Name, err)
}

// fetchOnce fetches and normalizes one category with retries and no fallback
func (c *client) fetchOnce(ctx context.Context, category models.Category) ([]models.ContentItem, error) {
	query := url.Values{}
	for k, v := range category.Params {
		query.Set(k, v)
	}

	body, err := c.withRetry(ctx, category.Name, func() ([]byte, error) {
		return c.do(ctx, request{
			method:  http.MethodGet,
			path:    category.Endpoint,
			query:   query,
			timeout: category.Timeout,
		})
	})
	if err != nil {
		return nil, err
	}

	items := c.normalizer.Normalize(body)
	if len(items) == 0 && !json.Valid(body) {
		logger := config.GetLogger()
		logger.Debug().Str("category", category.Name).Int("bytes", len(body)).Msg("Response is not valid JSON, treating as empty")
	}
	return items, nil
}

// StreamCategories implements Client
func (c *client) StreamCategories(ctx context.Context, categories []models.Category) <-chan models.CategoryResult {
	// Buffered so that settling never blocks on a slow reader.
	ch := make(chan models.CategoryResult, len(categories))

	go func() {
		defer close(ch)
		logger := config.GetLogger()
		logger.Debug().Int("categories", len(categories)).Msg("Fetching categories in parallel")

		var (
			wg       sync.WaitGroup
			failedMu sync.Mutex
			failed   []string
		)
		wg.Add(len(categories))

		for _, category := range categories {
			category := category
			go func() {
				defer wg.Done()
				items, fromFallback, err := c.fetchCategory(ctx, category)
				if err != nil {
					failedMu.Lock()
					failed = append(failed, category.Name)
					failedMu.Unlock()
					if !errors.Is(err, ErrSuperseded) {
						logger.Warn().Err(err).Str("category", category.Name).Msg("Category fetch failed")
					}
				}
				ch <- models.CategoryResult{
					Category:     category,
					Items:        items,
					Err:          err,
					FromFallback: fromFallback,
				}
			}()
		}

		wg.Wait()

		switch {
		case len(failed) == len(categories) && len(categories) > 0:
			logger.Warn().Strs("failed", failed).Msg("All categories failed")
		case len(failed) > 0:
			logger.Warn().Strs("failed", failed).Int("successful_categories", len(categories)-len(failed)).Msg("Partial success fetching categories")
		default:
			logger.Debug().Int("categories", len(categories)).Msg("Fetched all categories")
		}
	}()

	return ch
}
