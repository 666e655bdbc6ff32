package updater

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "gitplug"

	resultSuccess = "success"
	resultError   = "error"

	operationVersions = "versions"
	operationInstall  = "install"
	operationUpdate   = "update"
	operationCheck    = "check"
)

// Metrics holds the Prometheus collectors for package operations.
// NewMetrics should be used to create instances of Metrics.
type Metrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	placedPackages    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
//
// Metrics collected:
//   - gitplug_operations_total: operations by name and result
//   - gitplug_operation_duration_seconds: operation duration by name
//   - gitplug_packages_placed_total: packages placed by mode and reference kind
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "Total number of package operations",
		}, []string{"operation", "result"}),

		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "operation_duration_seconds",
			Help:      "Package operation duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),

		placedPackages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "packages_placed_total",
			Help:      "Total number of packages placed into the install root",
		}, []string{"mode", "kind"}),
	}
}

func (m *Metrics) observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}

	result := resultSuccess
	if err != nil {
		result = resultError
	}

	m.operations.WithLabelValues(operation, result).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) placed(mode string, kind string) {
	if m == nil {
		return
	}
	m.placedPackages.WithLabelValues(mode, kind).Inc()
}
