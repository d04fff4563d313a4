package transport

import (
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer builds the alternative, lower-latency command transport's
// carrier: a grpc.Server with standard health checking wired in, following
// cmd/orders/main.go's grpc.NewServer()/net.Listen shape. A custom
// CreateOrder/CancelOrder RPC service requires protoc-generated message
// types; this module provides the transport up to that boundary and
// registers the health service protobuf already vendored by grpc-go.
func NewGRPCServer(logger *zap.Logger) *grpc.Server {
	s := grpc.NewServer()
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("tradsys-lob", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(s, healthSrv)
	reflection.Register(s)
	return s
}

// ListenGRPC starts s on addr in a goroutine, logging any serve error.
func ListenGRPC(s *grpc.Server, addr string, logger *zap.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		logger.Info("grpc server starting", zap.String("addr", addr))
		if err := s.Serve(lis); err != nil {
			logger.Error("grpc server error", zap.Error(err))
		}
	}()
	return nil
}
