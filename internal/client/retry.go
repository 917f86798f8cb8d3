package client

import (
	"context"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/cinebrain/releases/internal/apperrors"
	"github.com/cinebrain/releases/internal/config"
)

// withRetry runs fn under an exponential backoff policy: retryBaseDelay, then twice
// that, and so on for at most maxRetries retries. Only network and timeout errors
// are retried; authentication failures and cancellation return immediately.
// The last failure is returned unwrapped so callers can match it with errors.Is.
func (c *client) withRetry(ctx context.Context, name string, fn func() ([]byte, error)) ([]byte, error) {
	if c.maxRetries == 0 {
		return fn()
	}

	logger := config.GetLogger()
	policy := retrypolicy.NewBuilder[[]byte]().
		HandleIf(func(_ []byte, err error) bool {
			return apperrors.IsRetryable(err)
		}).
		WithMaxRetries(c.maxRetries).
		WithBackoff(c.retryBaseDelay, c.retryBaseDelay<<c.maxRetries).
		ReturnLastFailure().
		OnRetry(func(e failsafe.ExecutionEvent[[]byte]) {
			logger.Debug().Err(e.LastError()).Str("category", name).Int("attempt", e.Attempts()).Msg("Retrying request")
		}).
		Build()

	return failsafe.With[[]byte](policy).WithContext(ctx).Get(fn)
}
