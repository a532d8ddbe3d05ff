package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthCheck reports one dependency under Service. The overall status is NOT_SERVING
// while any check fails.
type HealthCheck struct {
	Service string
	Check   func(ctx context.Context) error
}

const healthInterval = 15 * time.Second

// ServeHealth exposes the standard gRPC health service on lis until ctx is done.
func ServeHealth(ctx context.Context, lis net.Listener, logger *slog.Logger, checks ...HealthCheck) error {
	if logger == nil {
		logger = slog.Default()
	}
	srv := grpc.NewServer()
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)

	evaluate(ctx, hs, checks, logger)
	go func() {
		t := time.NewTicker(healthInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				hs.Shutdown()
				srv.GracefulStop()
				return
			case <-t.C:
				evaluate(ctx, hs, checks, logger)
			}
		}
	}()

	logger.Info("grpc.health.listening", "addr", lis.Addr().String(), "checks", len(checks))
	return srv.Serve(lis)
}

func evaluate(ctx context.Context, hs *health.Server, checks []HealthCheck, logger *slog.Logger) {
	overall := grpc_health_v1.HealthCheckResponse_SERVING
	for _, c := range checks {
		status := grpc_health_v1.HealthCheckResponse_SERVING
		if err := c.Check(ctx); err != nil {
			logger.Warn("grpc.health.check_failed", "service", c.Service, "error", err)
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			overall = status
		}
		hs.SetServingStatus(c.Service, status)
	}
	// Empty service name is the overall server health.
	hs.SetServingStatus("", overall)
}
