// Package metric provides Prometheus metrics for the benchmark harness.
//
// It exposes per-operation counters, an operation latency histogram and
// a live worker gauge, plus an HTTP handler for serving /metrics during
// long benchmark runs.
//
// @req RQ-0403
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation label values for OpsTotal and OpDuration.
const (
	OpGet    = "get"
	OpPut    = "put"
	OpRemove = "remove"
)

// Registry holds all harness metrics.
type Registry struct {
	// OpsTotal counts completed operations, labelled by target and op.
	OpsTotal *prometheus.CounterVec

	// OpDuration samples per-operation latency, labelled by target and op.
	OpDuration *prometheus.HistogramVec

	// WorkersActive tracks currently running benchmark workers.
	WorkersActive prometheus.Gauge

	reg *prometheus.Registry
}

// NewRegistry creates a registry with all harness metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		OpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stripemap",
			Subsystem: "bench",
			Name:      "ops_total",
			Help:      "Completed benchmark operations.",
		}, []string{"target", "op"}),
		OpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stripemap",
			Subsystem: "bench",
			Name:      "op_duration_seconds",
			Help:      "Benchmark operation latency.",
			Buckets:   prometheus.ExponentialBuckets(50e-9, 4, 12),
		}, []string{"target", "op"}),
		WorkersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stripemap",
			Subsystem: "bench",
			Name:      "workers_active",
			Help:      "Benchmark workers currently running.",
		}),
		reg: reg,
	}

	reg.MustRegister(r.OpsTotal, r.OpDuration, r.WorkersActive)
	return r
}

// Handler returns an HTTP handler serving this registry in Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
