package storage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-collection document operations. A nil *Metrics is valid and records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	lockWait   *prometheus.HistogramVec
}

// NewMetrics creates the storage collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_operations_total",
				Help: "Total number of collection load/store operations",
			},
			[]string{"collection", "op", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storage_operation_duration_seconds",
				Help:    "Collection load/store duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"collection", "op"},
		),
		lockWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storage_lock_wait_seconds",
				Help:    "Time spent waiting for a collection's mutation lock",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"collection"},
		),
	}

	reg.MustRegister(m.operations, m.duration, m.lockWait)
	return m
}

func (m *Metrics) observe(collection, op string, started time.Time, err error) {
	if m == nil {
		return
	}

	result := "ok"
	switch {
	case IsCorruptData(err):
		result = "corrupt"
	case err != nil:
		result = "error"
	}

	m.operations.WithLabelValues(collection, op, result).Inc()
	m.duration.WithLabelValues(collection, op).Observe(time.Since(started).Seconds())
}

func (m *Metrics) observeLockWait(collection string, waited time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.WithLabelValues(collection).Observe(waited.Seconds())
}
