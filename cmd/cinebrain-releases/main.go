// Package main provides the cinebrain-releases entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/cinebrain/releases/internal/carousel"
	"github.com/cinebrain/releases/internal/config"
	grpcserver "github.com/cinebrain/releases/internal/grpc"
	"github.com/cinebrain/releases/internal/metrics"
	"github.com/cinebrain/releases/internal/models"
	"github.com/cinebrain/releases/internal/services"
	"github.com/cinebrain/releases/internal/session"
)

// version is set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveVersion prefers the ldflags version, then the module version recorded
// by go install.
func resolveVersion(ldflags string, info *debug.BuildInfo) string {
	if ldflags != "dev" {
		return ldflags
	}
	if info != nil && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

func resolvedVersion() string {
	info, _ := debug.ReadBuildInfo()
	return resolveVersion(version, info)
}

func newRootCmd() *cobra.Command {
	var apiBaseURL string

	rootCmd := &cobra.Command{
		Use:           "cinebrain-releases",
		Short:         "Select and rotate CineBrain new releases",
		Long:          "cinebrain-releases fetches new movie, TV and anime releases, ranks them, and drives the hero carousel.",
		Version:       resolvedVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("cinebrain-releases version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api", "", "API base URL (overrides api_base_url)")

	loadConfig := func() *config.Config {
		cfg := *config.GetConfig()
		if apiBaseURL != "" {
			cfg.APIBaseURL = apiBaseURL
		}
		return &cfg
	}

	rootCmd.AddCommand(newServeCmd(loadConfig))
	rootCmd.AddCommand(newOnceCmd(loadConfig))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cinebrain-releases version %s\n", resolvedVersion())
		},
	}
}

// onceOutput is the JSON document printed by the once command
type onceOutput struct {
	Items       []models.ContentItem `json:"items"`
	FromCache   bool                 `json:"from_cache"`
	Failed      []string             `json:"failed"`
	GeneratedAt time.Time            `json:"generated_at"`
}

func newOnceCmd(loadConfig func() *config.Config) *cobra.Command {
	var (
		byDate   bool
		maxItems int
	)

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run the release pipeline once and print the selection as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			order := services.OrderByScore
			if byDate {
				order = services.OrderByReleaseDate
			}
			a, err := newApp(loadConfig(), appOptions{order: order, maxItems: maxItems})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			result, err := a.pipeline.Run(ctx, services.TriggerManual)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(onceOutput{
				Items:       result.Items,
				FromCache:   result.FromCache,
				Failed:      result.Failed,
				GeneratedAt: result.GeneratedAt,
			})
		},
	}

	cmd.Flags().BoolVar(&byDate, "by-date", false, "Order the selection newest first instead of by score")
	cmd.Flags().IntVarP(&maxItems, "max", "n", 0, "Number of items to select (default carousel.max_items)")
	return cmd
}

func newServeCmd(loadConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the carousel with background refresh and a gRPC health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, loadConfig())
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := config.GetLogger()
	logger.Info().
		Str("api_base_url", cfg.APIBaseURL).
		Str("cache_provider", cfg.Cache.Provider).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Str("version", resolvedVersion()).
		Msg("Application started with configuration")

	a, err := newApp(cfg, appOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close application components")
		}
	}()

	if session.ConsumeFlag(a.session, session.FlagShowLogoutToast) {
		logger.Warn().Msg("Signed out because the previous session expired")
	}
	if session.IsAuthenticated(a.session) {
		if err := a.favorites.Seed(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to load favorites")
		}
	}

	grpcServer, readiness := grpcserver.NewGRPCServer()

	controller := carousel.NewController(
		carousel.NewLogRenderer(logger, a.favorites.Contains),
		carousel.Options{
			Interval:        config.Duration("carousel.autoplay_interval", cfg.Carousel.AutoplayInterval, carousel.DefaultInterval),
			ChangeThreshold: cfg.Refresh.ChangeThreshold,
			Placeholder:     placeholderSlides,
			OnStateChange:   func(s carousel.State) { readiness.SetReady(s.HasContent()) },
		},
	)
	defer controller.Destroy()
	controller.StartAutoPlay()

	refresher := carousel.NewRefresher(a.pipeline, controller, carousel.RefresherOptions{
		SoftInterval: config.Duration("refresh.soft_interval", cfg.Refresh.SoftInterval, carousel.DefaultSoftInterval),
		HardInterval: config.Duration("refresh.hard_interval", cfg.Refresh.HardInterval, carousel.DefaultHardInterval),
		Sweeper:      a.contentCache,
	})
	if err := refresher.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial load failed, showing placeholder content")
	}
	if err := refresher.Start(ctx); err != nil {
		return err
	}
	defer refresher.Stop()

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(metrics.ServerOptions{
			Address: cfg.Server.Address,
			Port:    cfg.Metrics.Port,
			Ready:   readiness.Ready,
		})
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}
	logger.Info().Str("address", address).Msg("Starting gRPC server")

	serveErr := make(chan error, 1)
	go func() { serveErr <- grpcServer.Serve(listener) }()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Received shutdown signal")
	case err := <-serveErr:
		return fmt.Errorf("serve gRPC: %w", err)
	}

	readiness.Shutdown()
	grpcServer.GracefulStop()
	logger.Info().Msg("Server stopped gracefully")
	return nil
}

// placeholderSlides is shown when no release could ever be loaded
var placeholderSlides = []models.ContentItem{
	{ID: -1, Title: "New releases are on their way", ContentType: models.ContentTypeMovie},
	{ID: -2, Title: "Browse trending movies and shows", ContentType: models.ContentTypeTV},
}
