package grpcsrv

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"max.ks1230/tcmb-rates/internal/logger"
)

// Probe asks a running server for its health status.
type Probe struct {
	conn   *grpc.ClientConn
	client healthpb.HealthClient
}

func NewProbe(addr string) (*Probe, error) {
	conn, err := grpc.Dial(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, errors.Wrap(err, "cannot initiate new connection")
	}
	return &Probe{conn: conn, client: healthpb.NewHealthClient(conn)}, nil
}

func (p *Probe) Close() {
	if err := p.conn.Close(); err != nil {
		logger.Error("failed to close grpc connection", zap.Error(err))
	}
}

// Check returns the serving status name, e.g. "SERVING".
func (p *Probe) Check(ctx context.Context) (string, error) {
	res, err := p.client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return "", errors.Wrap(err, "health check")
	}
	return res.GetStatus().String(), nil
}
