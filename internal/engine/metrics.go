package engine

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the engine's prometheus instruments, registered through
// engine.Module following internal/metrics/metrics_module.go's pattern.
type Metrics struct {
	OrdersProcessed prometheus.Counter
	TradesExecuted  prometheus.Counter
	Rejections      *prometheus.CounterVec
	CommandLatency  prometheus.Histogram
}

// NewMetrics registers the engine's instruments against registry. A nil
// registry is accepted for tests: the counters still work, just unexposed.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradsys_lob_orders_processed_total",
			Help: "Total NEW commands accepted past validation.",
		}),
		TradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradsys_lob_trades_executed_total",
			Help: "Total fills emitted by the matching core.",
		}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradsys_lob_rejections_total",
			Help: "Commands dropped by kind.",
		}, []string{"kind"}),
		CommandLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradsys_lob_command_latency_seconds",
			Help:    "Wall-clock time spent in MatchingEngine.Process.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if registry != nil {
		registry.MustRegister(m.OrdersProcessed, m.TradesExecuted, m.Rejections, m.CommandLatency)
	}
	return m
}
