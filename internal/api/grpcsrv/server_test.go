package grpcsrv

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type switchPinger struct {
	down atomic.Bool
}

func (p *switchPinger) Ping(context.Context) error {
	if p.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func startServer(t *testing.T, db pinger) healthpb.HealthClient {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := newServer(lis, db, 10*time.Millisecond)
	go srv.Serve(ctx)
	t.Cleanup(func() {
		cancel()
		srv.Shutdown()
	})

	conn, err := grpc.Dial(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func Test_Health_ReportsDatabaseState(t *testing.T) {
	db := &switchPinger{}
	client := startServer(t, db)

	assert.Eventually(t, func() bool {
		res, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
		return err == nil && res.Status == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)

	db.down.Store(true)

	assert.Eventually(t, func() bool {
		res, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
		return err == nil && res.Status == healthpb.HealthCheckResponse_NOT_SERVING
	}, time.Second, 10*time.Millisecond)
}

func Test_Probe(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	srv := newServer(lis, &switchPinger{}, time.Hour)
	go srv.Serve(ctx)
	t.Cleanup(func() {
		cancel()
		srv.Shutdown()
	})

	probe, err := NewProbe(lis.Addr().String())
	require.NoError(t, err)
	defer probe.Close()

	assert.Eventually(t, func() bool {
		status, err := probe.Check(context.Background())
		return err == nil && status == "SERVING"
	}, time.Second, 10*time.Millisecond)
}
