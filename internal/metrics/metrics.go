// Package metrics exposes Prometheus instrumentation for the execution
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's Prometheus collectors. Construct one per
// process (or per test) with its own registry; there are no package-level
// collectors.
type Metrics struct {
	registry *prometheus.Registry

	SignalsTotal   *prometheus.CounterVec
	OrdersTotal    *prometheus.CounterVec
	RetriesTotal   prometheus.Counter
	StopLossFailed prometheus.Counter
	SignalDuration prometheus.Histogram
}

// New creates and registers the pipeline collectors on reg
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hooktrade_signals_total",
			Help: "Processed signals by action and terminal status",
		}, []string{"action", "status"}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hooktrade_orders_submitted_total",
			Help: "Orders submitted to the exchange by kind and side",
		}, []string{"kind", "side"}),
		RetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hooktrade_exchange_retries_total",
			Help: "Exchange call retries after transient failures",
		}),
		StopLossFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hooktrade_stop_loss_failures_total",
			Help: "Entries left without stop-loss protection",
		}),
		SignalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hooktrade_signal_duration_seconds",
			Help:    "End-to-end signal processing latency",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.SignalsTotal,
		m.OrdersTotal,
		m.RetriesTotal,
		m.StopLossFailed,
		m.SignalDuration,
	)

	return m
}

// Handler returns the Prometheus scrape handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
