// Package metrics provides the prometheus registry and its HTTP exposition
// endpoint, shared by the engine's and transport's instruments.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the prometheus registry and registers its HTTP handler,
// following internal/metrics/metrics_module.go's shape.
var Module = fx.Options(
	fx.Provide(NewRegistry),
	fx.Invoke(RegisterHandler),
)

// NewRegistry builds an empty prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// RegisterHandler serves registry over /metrics on :9090, lifecycle-managed.
func RegisterHandler(lifecycle fx.Lifecycle, registry *prometheus.Registry, logger *zap.Logger) {
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Addr: ":9090", Handler: mux}

	lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("starting metrics server", zap.String("addr", server.Addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("metrics server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping metrics server")
			return server.Shutdown(ctx)
		},
	})
}
