package typestore

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	metricspkg "github.com/instrumentd/typestore/metrics"
)

// Metrics holds all type-store metrics.
type Metrics struct {
	registry *metricspkg.ComponentRegistry

	KindsRegistered prometheus.Gauge
	ValuesStored    prometheus.Gauge
	StoresTotal     prometheus.Counter
	LookupsTotal    *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	ValuesPerKind   prometheus.Histogram
}

// NewMetrics creates type-store metrics on a private component registry.
func NewMetrics() *Metrics {
	reg := metricspkg.NewComponentRegistry("typestore", "")

	return &Metrics{
		registry: reg,

		KindsRegistered: reg.NewGauge(prometheus.GaugeOpts{
			Name: "kinds_registered",
			Help: "Number of registered kinds",
		}),

		ValuesStored: reg.NewGauge(prometheus.GaugeOpts{
			Name: "values_stored",
			Help: "Number of values currently held across all kinds",
		}),

		StoresTotal: reg.NewCounter(prometheus.CounterOpts{
			Name: "stores_total",
			Help: "Total number of successful value stores",
		}),

		LookupsTotal: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "lookups_total",
			Help: "Total number of value lookups",
		}, []string{"result"}),

		ErrorsTotal: reg.NewCounterVec(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of failed operations",
		}, []string{"type"}),

		ValuesPerKind: reg.NewHistogram(prometheus.HistogramOpts{
			Name:    "values_per_kind",
			Help:    "Values released per kind at deregistration",
			Buckets: metricspkg.CountBuckets,
		}),
	}
}

// Handler exposes the metrics in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return m.registry.Handler()
}
