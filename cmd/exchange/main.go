// Command exchange runs the matching engine as a standalone service:
// command ingestion over HTTP (the gRPC server carries only health and
// reflection services), matching, and market-data publishing,
// wired together with go.uber.org/fx following cmd/ws/main.go's shape.
package main

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/tradsys-lob/internal/engine"
	"github.com/abdoElHodaky/tradsys-lob/internal/metrics"
	"github.com/abdoElHodaky/tradsys-lob/internal/publish"
	"github.com/abdoElHodaky/tradsys-lob/internal/transport"
)

func main() {
	app := fx.New(
		fx.Provide(newLogger),
		fx.Provide(newTransportConfig),
		metrics.Module,
		engine.Module,
		publish.Module,
		fx.Provide(
			fx.Annotate(func(e *engine.MatchingEngine) *engine.MatchingEngine { return e },
				fx.As(new(transport.Processor))),
		),
		fx.Provide(
			fx.Annotate(func(p *publish.Publisher) *publish.Publisher { return p },
				fx.As(new(transport.Publisher))),
		),
		transport.Module,
	)

	app.Run()
}

func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

func newTransportConfig() transport.Config {
	return transport.Config{
		Addr:          ":8080",
		OpsAddr:       ":8081",
		GRPCAddr:      ":50051",
		JWTSecret:     []byte("change-me"),
		RatePerSecond: 200,
	}
}
