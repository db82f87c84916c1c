package grpcsrv

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"max.ks1230/tcmb-rates/internal/logger"
)

// ServiceName is the health service name probes ask for. The empty name
// reports the same status.
const ServiceName = "tcmb.rates"

const probeTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type config interface {
	Port() int
	ProbeInterval() time.Duration
}

// HealthServer exposes grpc.health.v1 and keeps it in sync with the database.
type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	lis      net.Listener
	db       pinger
	interval time.Duration
}

func NewServer(config config, db pinger) (*HealthServer, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", config.Port()))
	if err != nil {
		return nil, errors.Wrap(err, "cannot create server")
	}
	return newServer(lis, db, config.ProbeInterval()), nil
}

func newServer(lis net.Listener, db pinger, interval time.Duration) *HealthServer {
	rpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(rpcServer, healthServer)
	reflection.Register(rpcServer)

	return &HealthServer{
		server:   rpcServer,
		health:   healthServer,
		lis:      lis,
		db:       db,
		interval: interval,
	}
}

func (s *HealthServer) Addr() net.Addr {
	return s.lis.Addr()
}

// Serve probes the database once, then every interval until ctx is done,
// while serving requests. It blocks until the server stops.
func (s *HealthServer) Serve(ctx context.Context) {
	s.probe(ctx)
	go s.probeLoop(ctx)

	logger.Info("gRPC server listening", zap.Any("addr", s.lis.Addr()))
	if err := s.server.Serve(s.lis); err != nil {
		logger.Error("failed to serve gRPC", zap.Error(err))
	}
}

func (s *HealthServer) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *HealthServer) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.Ping(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		logger.Warn("database probe failed", zap.Error(err))
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *HealthServer) Shutdown() {
	s.health.Shutdown()
	s.server.GracefulStop()
	logger.Info("grpc server stopped")
}
