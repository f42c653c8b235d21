package lifecycle

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for manager operations. Pass the value
// from NewMetrics to WithMetrics to enable collection.
type Metrics struct {
	// OperationsTotal counts lifecycle operations by op and outcome.
	OperationsTotal *prometheus.CounterVec

	// ExternalChangesTotal counts refresher notifications by the action
	// taken ("refresh" or "suppressed").
	ExternalChangesTotal *prometheus.CounterVec

	// RegisteredProjects tracks the current registry size.
	RegisteredProjects prometheus.Gauge
}

// NewMetrics creates and registers the manager metrics on the default
// Prometheus registerer. sync.Once guards against duplicate registration
// panics when several managers share a process.
//
// Metrics:
//   - projectkit_operations_total{op,outcome}
//   - projectkit_external_changes_total{action}
//   - projectkit_registered_projects
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			OperationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "projectkit_operations_total",
					Help: "Total lifecycle operations by outcome",
				},
				[]string{"op", "outcome"}, // op: load/save/close/refresh/activate
			),

			ExternalChangesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "projectkit_external_changes_total",
					Help: "External change notifications by action taken",
				},
				[]string{"action"}, // "refresh" or "suppressed"
			),

			RegisteredProjects: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "projectkit_registered_projects",
					Help: "Current number of registered projects",
				},
			),
		}
	})

	return globalMetrics
}
