package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cinebrain/releases/internal/apperrors"
	"github.com/cinebrain/releases/internal/config"
	"github.com/cinebrain/releases/internal/metrics"
	"github.com/cinebrain/releases/internal/parser"
)

// request describes one API call
type request struct {
	method  string
	path    string
	query   url.Values
	body    []byte
	timeout time.Duration
}

func (c *client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do performs a single attempt of r and returns the UTF-8 response body.
// Failures are mapped onto the apperrors taxonomy: 401 is ErrAuth, any other
// non-2xx status or transport failure is ErrNetwork, and an expired per-request
// deadline is ErrTimeout.
func (c *client) do(ctx context.Context, r request) ([]byte, error) {
	endpoint := c.endpoint(r.path, r.query)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, canceled(ctx, endpoint, err)
		}
	}

	timeout := r.timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(reqCtx, r.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", config.GetUserAgent())
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, reqCtx, endpoint, timeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleAuthFailure(endpoint)
		return nil, &apperrors.ErrAuth{URL: endpoint}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewStatusError(endpoint, resp.StatusCode)
	}

	reader, err := parser.NewUTF8Reader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &apperrors.ErrParse{Source: endpoint, Cause: err}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, c.transportError(ctx, reqCtx, endpoint, timeout, err)
	}
	return data, nil
}

func (c *client) transportError(parent, reqCtx context.Context, endpoint string, timeout time.Duration, err error) error {
	if parent.Err() != nil {
		return canceled(parent, endpoint, err)
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &apperrors.ErrTimeout{URL: endpoint, Timeout: timeout}
	}
	return apperrors.NewNetworkError(endpoint, err)
}

// canceled reports a request abandoned because its caller's context ended.
// The cancellation cause stays inspectable with errors.Is.
func canceled(ctx context.Context, endpoint string, err error) error {
	if cause := context.Cause(ctx); cause != nil && !errors.Is(err, cause) {
		return fmt.Errorf("request to %s abandoned: %w: %w", endpoint, cause, ctx.Err())
	}
	return fmt.Errorf("request to %s abandoned: %w", endpoint, err)
}

func (c *client) handleAuthFailure(endpoint string) {
	metrics.AuthFailuresTotal.Inc()
	logger := config.GetLogger()
	logger.Warn().Str("url", endpoint).Msg("API rejected credentials")
	if c.onAuthFailure != nil {
		c.onAuthFailure()
	}
}
