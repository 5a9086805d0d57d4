package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// LaunchMetrics aggregates the counters exported for launch operations.
type LaunchMetrics struct {
	operations *prometheus.CounterVec
	rejections *prometheus.CounterVec
	supply     *prometheus.GaugeVec
}

var (
	launchOnce     sync.Once
	launchRegistry *LaunchMetrics
)

// Launch returns the lazily-initialised metrics registry for launch activity.
func Launch() *LaunchMetrics {
	launchOnce.Do(func() {
		launchRegistry = &LaunchMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "sendor",
				Subsystem: "launch",
				Name:      "operations_total",
				Help:      "Completed launch operations segmented by kind.",
			}, []string{"op"}),
			rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "sendor",
				Subsystem: "launch",
				Name:      "rejections_total",
				Help:      "Rejected launch operations segmented by kind and reason.",
			}, []string{"op", "reason"}),
			supply: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "sendor",
				Subsystem: "launch",
				Name:      "current_supply",
				Help:      "Base units sold per launch.",
			}, []string{"launch"}),
		}
		prometheus.MustRegister(
			launchRegistry.operations,
			launchRegistry.rejections,
			launchRegistry.supply,
		)
	})
	return launchRegistry
}

// ObserveOperation records a completed operation.
func (m *LaunchMetrics) ObserveOperation(op string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op).Inc()
}

// ObserveRejection records a rejected operation with its reason.
func (m *LaunchMetrics) ObserveRejection(op, reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(op, reason).Inc()
}

// SetSupply publishes the current supply for a launch.
func (m *LaunchMetrics) SetSupply(launchID string, supply float64) {
	if m == nil {
		return
	}
	m.supply.WithLabelValues(launchID).Set(supply)
}
