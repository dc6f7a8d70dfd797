// Package health exposes the standard gRPC health checking service so that
// orchestrators can probe the consultation server without speaking HTTP.
package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// ServiceName is the service name reported alongside the overall ("") status.
const ServiceName = "expertconsult.Consultation"

// DefaultShutdownTimeout bounds GracefulStop before open streams are cut.
const DefaultShutdownTimeout = 10 * time.Second

// Server wraps a grpc.Server carrying only the health service.
type Server struct {
	grpc   *grpc.Server
	status *health.Server
	logger *slog.Logger

	// ShutdownTimeout is how long Serve waits for in-flight RPCs, including
	// Watch streams, before forcing the server closed.
	ShutdownTimeout time.Duration
}

// NewServer creates a health server reporting SERVING for the process and
// for ServiceName.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gs := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    2 * time.Minute,
			Timeout: 10 * time.Second,
		}),
	)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)

	return &Server{grpc: gs, status: hs, logger: logger, ShutdownTimeout: DefaultShutdownTimeout}
}

// SetServing flips the reported status for the process and ServiceName.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.status.SetServingStatus("", st)
	s.status.SetServingStatus(ServiceName, st)
}

// Serve accepts connections on lis until ctx is cancelled, then marks the
// service NOT_SERVING and stops gracefully. Watch streams never end on their
// own, so after ShutdownTimeout the server is stopped hard.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpc.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.status.Shutdown()
		s.stop()
		<-errCh
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc health server: %w", err)
		}
		return nil
	}
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.logger.Info("gRPC health server listening", "addr", lis.Addr().String())
	return s.Serve(ctx, lis)
}

func (s *Server) stop() {
	stopped := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(stopped)
	}()

	timer := time.NewTimer(s.ShutdownTimeout)
	defer timer.Stop()

	select {
	case <-stopped:
	case <-timer.C:
		s.logger.Warn("gRPC health graceful stop timed out, forcing close", "timeout", s.ShutdownTimeout)
		s.grpc.Stop()
		<-stopped
	}
}
