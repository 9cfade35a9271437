// Package grpcserver exposes the booking service's readiness over the standard gRPC health
// protocol.
package grpcserver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/md-rashed-zaman/apptcrm/libs/runtime"
)

const ServiceName = "booking-service"

// Health mirrors /readyz: SERVING while every ready check passes.
type Health struct {
	srv     *health.Server
	checks  []runtime.ReadyCheck
	logger  *slog.Logger
	serving bool
}

func Register(grpcServer *grpc.Server, logger *slog.Logger, checks ...runtime.ReadyCheck) *Health {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Health{srv: health.NewServer(), checks: checks, logger: logger, serving: true}
	healthpb.RegisterHealthServer(grpcServer, h.srv)
	return h
}

// Refresh runs the checks once and publishes the result for "" and ServiceName.
func (h *Health) Refresh(ctx context.Context) bool {
	failures := runtime.RunReadyChecks(ctx, h.checks...)
	serving := len(failures) == 0
	status := healthpb.HealthCheckResponse_SERVING
	if !serving {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	if serving != h.serving {
		if serving {
			h.logger.Info("grpc health serving")
		} else {
			h.logger.Warn("grpc health not serving", "failures", strings.Join(failures, "; "))
		}
	}
	h.serving = serving
	h.srv.SetServingStatus("", status)
	h.srv.SetServingStatus(ServiceName, status)
	return serving
}

// Run refreshes every interval until ctx ends, then reports NOT_SERVING to watchers.
func (h *Health) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = 10 * time.Second
	}
	h.Refresh(ctx)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.srv.Shutdown()
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}
