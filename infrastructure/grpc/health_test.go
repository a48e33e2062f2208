package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestHealthServer_Lifecycle(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	listener := bufconn.Listen(1 << 20)
	server := NewHealthServer()
	go func() { _ = server.Serve(listener) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	req.NoError(err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: EngineService})
		req.NoError(err)
		return resp.Status
	}

	req.Equal(healthpb.HealthCheckResponse_NOT_SERVING, check())
	server.Serving()
	req.Equal(healthpb.HealthCheckResponse_SERVING, check())

	server.Shutdown()
	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: EngineService})
	req.Error(err)
}
