package transport

import (
	"context"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config holds the transport surface's tuning knobs.
type Config struct {
	Addr          string
	OpsAddr       string
	GRPCAddr      string
	JWTSecret     []byte
	RatePerSecond int64
}

// Module wires the gin command endpoint, the gorilla/mux ops endpoint,
// and the grpc health surface into the fx lifecycle.
var Module = fx.Options(
	fx.Invoke(registerHTTP),
	fx.Invoke(registerOps),
	fx.Invoke(registerGRPC),
)

func registerHTTP(lc fx.Lifecycle, engine Processor, publisher Publisher, logger *zap.Logger, cfg Config) {
	router := NewRouter(engine, publisher, logger, cfg.JWTSecret, cfg.RatePerSecond)
	server := &http.Server{Addr: cfg.Addr, Handler: router}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("command http server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}

func registerOps(lc fx.Lifecycle, logger *zap.Logger, cfg Config) {
	server := &http.Server{Addr: cfg.OpsAddr, Handler: NewOpsRouter()}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("ops http server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}

func registerGRPC(lc fx.Lifecycle, logger *zap.Logger, cfg Config) {
	server := NewGRPCServer(logger)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return ListenGRPC(server, cfg.GRPCAddr, logger)
		},
		OnStop: func(ctx context.Context) error {
			server.GracefulStop()
			return nil
		},
	})
}
