// Package grpc exposes the process health over gRPC.
package grpc

import (
	"sync"
	"sync/atomic"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// CarouselService is the health service name that reports whether the carousel
// holds real content. The empty service name reports process liveness.
const CarouselService = "cinebrain.releases.v1.Carousel"

var (
	grpcServerMetrics         *grpcprom.ServerMetrics
	registerServerMetricsOnce sync.Once
)

// Readiness flips the carousel health status
type Readiness struct {
	server *health.Server
	ready  atomic.Bool
}

// SetReady reports SERVING once the carousel shows content, NOT_SERVING otherwise
func (r *Readiness) SetReady(ready bool) {
	r.ready.Store(ready)
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if ready {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	r.server.SetServingStatus(CarouselService, status)
}

// Ready reports the last value passed to SetReady
func (r *Readiness) Ready() bool {
	return r.ready.Load()
}

// Shutdown marks every service NOT_SERVING ahead of a graceful stop
func (r *Readiness) Shutdown() {
	r.server.Shutdown()
}

// NewGRPCServer creates a gRPC server with Prometheus metrics, health checking,
// and reflection. The carousel starts NOT_SERVING.
func NewGRPCServer() (*grpc.Server, *Readiness) {
	// Set up Prometheus gRPC server metrics once per process
	registerServerMetricsOnce.Do(func() {
		grpcServerMetrics = grpcprom.NewServerMetrics(
			grpcprom.WithServerHandlingTimeHistogram(),
		)
		prometheus.MustRegister(grpcServerMetrics)
	})

	srvMetrics := grpcServerMetrics

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(srvMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(srvMetrics.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(CarouselService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	// Register reflection service for tools like grpcurl
	reflection.Register(grpcServer)

	srvMetrics.InitializeMetrics(grpcServer)

	return grpcServer, &Readiness{server: healthServer}
}
