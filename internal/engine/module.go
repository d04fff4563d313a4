package engine

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/tradsys-lob/internal/rules"
)

// Module wires Config, the compiled rule sets, and the MatchingEngine
// itself into the fx graph, following
// internal/orders/matching/orders_matching_module.go's shape.
var Module = fx.Options(
	fx.Provide(ProvideConfig),
	fx.Provide(ProvideSymbolSet),
	fx.Provide(ProvideTickRules),
	fx.Provide(ProvideLotRules),
	fx.Provide(NewFxEngine),
)

// ProvideConfig loads the engine's Config from the working directory's
// config search path.
func ProvideConfig() (*Config, error) {
	return LoadConfig("")
}

// ProvideSymbolSet builds the symbol whitelist from Config.
func ProvideSymbolSet(cfg *Config) *rules.SymbolSet {
	return rules.NewSymbolSet(cfg.Symbols)
}

// ProvideTickRules compiles Config's tick-size intervals.
func ProvideTickRules(cfg *Config) (*rules.TickSizeRules, error) {
	return BuildTickRules(cfg.TickSize)
}

// ProvideLotRules compiles Config's lot-step intervals.
func ProvideLotRules(cfg *Config) (*rules.LotSizeRules, error) {
	return BuildLotRules(cfg.LotSize)
}

// NewFxEngine builds the MatchingEngine and hooks session open/close into
// the fx lifecycle, mirroring orders_matching_module.go's NewFxEngine.
func NewFxEngine(
	lifecycle fx.Lifecycle,
	cfg *Config,
	symbols *rules.SymbolSet,
	tickRules *rules.TickSizeRules,
	lotRules *rules.LotSizeRules,
	logger *zap.Logger,
	registry *prometheus.Registry,
) *MatchingEngine {
	e := New(cfg, symbols, tickRules, lotRules, logger, registry)

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("market open", zap.String("snapshot_path", cfg.Session.Path))
			e.MarketOpen(cfg.Session.Path)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("market close", zap.String("snapshot_path", cfg.Session.Path))
			return e.MarketClose(cfg.Session.Path)
		},
	})

	return e
}
