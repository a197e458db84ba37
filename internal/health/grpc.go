package health

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewGRPCServer returns a gRPC server exposing grpc.health.v1.Health and the
// health server backing it. Status starts as NOT_SERVING until Watch runs.
func NewGRPCServer() (*grpc.Server, *grpchealth.Server) {
	srv := grpc.NewServer()
	hs := grpchealth.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}

// Watch mirrors database reachability into hs until ctx is done.
func (c Checker) Watch(ctx context.Context, hs *grpchealth.Server, every time.Duration) {
	last := healthpb.HealthCheckResponse_UNKNOWN
	update := func() {
		next := healthpb.HealthCheckResponse_SERVING
		if status := c.Database(ctx); !status.Healthy {
			next = healthpb.HealthCheckResponse_NOT_SERVING
		}
		if next != last {
			log.Printf("grpc health: %s", next)
			last = next
		}
		hs.SetServingStatus("", next)
	}
	update()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			update()
		}
	}
}
