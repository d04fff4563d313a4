package publish

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the Publisher, wiring its close hook into fx.
var Module = fx.Options(
	fx.Provide(ProvideConfig),
	fx.Provide(NewFxPublisher),
)

// ProvideConfig supplies the publisher's default wiring; override by
// replacing this provider in the app's fx graph for non-default subjects.
func ProvideConfig() Config {
	return Config{NATSURL: nats.DefaultURL, Subject: "tradsys-lob.events"}
}

// NewFxPublisher builds a Publisher and registers its shutdown hook.
func NewFxPublisher(lc fx.Lifecycle, cfg Config, logger *zap.Logger) (*Publisher, error) {
	p, err := New(cfg, watermill.NewStdLogger(false, false), logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return p.Close(ctx)
		},
	})

	return p, nil
}
