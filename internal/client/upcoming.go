package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cinebrain/releases/internal/models"
	"github.com/cinebrain/releases/internal/parser"
)

// UpcomingPath is the endpoint of the grouped upcoming releases feed
const UpcomingPath = "/upcoming-sync"

// FetchUpcoming implements Client
func (c *client) FetchUpcoming(ctx context.Context, region string, categories []string, timeRange string) (*models.UpcomingReleases, error) {
	query := url.Values{}
	if region != "" {
		query.Set("region", region)
	}
	if len(categories) > 0 {
		query.Set("categories", strings.Join(categories, ","))
	}
	if timeRange != "" {
		query.Set("time_range", timeRange)
	}

	body, err := c.withRetry(ctx, "upcoming", func() ([]byte, error) {
		return c.do(ctx, request{method: http.MethodGet, path: UpcomingPath, query: query, timeout: c.heavyTimeout})
	})
	if err != nil {
		return nil, fmt.Errorf("fetch upcoming releases: %w", err)
	}

	upcoming, err := parser.ParseUpcoming(c.endpoint(UpcomingPath, query), body)
	if err != nil {
		return nil, err
	}
	return &upcoming, nil
}
