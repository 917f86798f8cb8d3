package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cinebrain/releases/internal/config"
)

// DefaultPort is used when ServerOptions.Port is zero.
const DefaultPort = 9090

// ServerOptions configures the metrics listener.
type ServerOptions struct {
	Address string
	Port    int
	// Ready backs /readyz. Nil reports ready.
	Ready func() bool
}

// NewHTTPServer serves the pipeline, carousel, cache and gRPC metrics on /metrics
// and carousel readiness on /readyz.
//
// A collector that fails during a scrape (cache_entries against an unreachable
// Redis, for instance) is logged and skipped instead of failing the whole scrape.
func NewHTTPServer(opts ServerOptions) *http.Server {
	port := opts.Port
	if port == 0 {
		port = DefaultPort
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			ErrorLog:      scrapeLogger{},
			ErrorHandling: promhttp.ContinueOnError,
		}),
	))
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if opts.Ready != nil && !opts.Ready() {
			http.Error(w, "carousel has no content", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", opts.Address, port),
		Handler: mux,
	}
}

// scrapeLogger routes promhttp errors to zerolog.
type scrapeLogger struct{}

func (scrapeLogger) Println(v ...interface{}) {
	logger := config.GetLogger()
	logger.Warn().Str("component", "metrics").Msg(fmt.Sprint(v...))
}
