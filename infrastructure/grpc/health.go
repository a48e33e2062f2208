package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// EngineService is the name probed by health checkers.
const EngineService = "game-lab.engine"

// HealthServer reports whether the room engine accepts traffic.
type HealthServer struct {
	*grpc.Server
	health *health.Server
}

func NewHealthServer() *HealthServer {
	s := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	h.SetServingStatus(EngineService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{Server: s, health: h}
}

func (s *HealthServer) Serving() {
	s.health.SetServingStatus(EngineService, healthpb.HealthCheckResponse_SERVING)
}

// Shutdown flips every service to NOT_SERVING before the listener goes away.
func (s *HealthServer) Shutdown() {
	s.health.Shutdown()
	s.GracefulStop()
}
