// Package reporting forwards failures that need attention to Sentry.
// Without a DSN every call is a no-op.
package reporting

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/cinebrain/releases/internal/config"
)

// Reporter records an error together with searchable tags
type Reporter interface {
	Report(err error, tags map[string]string)
	Flush(timeout time.Duration) bool
}

// Options configures the Sentry reporter
type Options struct {
	DSN         string
	Environment string
	Release     string
	// BeforeSend can inspect or drop events before they leave the process
	BeforeSend func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event
}

// New returns a Sentry-backed Reporter, or Nop when opts.DSN is empty.
func New(opts Options) (Reporter, error) {
	if opts.DSN == "" {
		return Nop{}, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Release:     opts.Release,
		BeforeSend:  opts.BeforeSend,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}

	logger := config.GetLogger()
	logger.Info().Str("environment", opts.Environment).Msg("Error reporting enabled")
	return &sentryReporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

type sentryReporter struct {
	hub *sentry.Hub
}

func (r *sentryReporter) Report(err error, tags map[string]string) {
	if err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		r.hub.CaptureException(err)
	})
}

func (r *sentryReporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}

// Nop discards every report
type Nop struct{}

func (Nop) Report(error, map[string]string) {}

func (Nop) Flush(time.Duration) bool { return true }
