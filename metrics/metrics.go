// Package metrics wraps prometheus registration so each component gets a
// consistently namespaced set of collectors backed by one registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CountBuckets suits histograms over small item counts (values per kind,
// batch sizes and the like).
var CountBuckets = []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}

// ComponentRegistry scopes collectors to a namespace/subsystem pair and
// registers them on a private prometheus registry.
type ComponentRegistry struct {
	namespace string
	subsystem string
	reg       *prometheus.Registry
}

// NewComponentRegistry creates a registry for one component. Standard process
// and Go runtime collectors are included.
func NewComponentRegistry(namespace, subsystem string) *ComponentRegistry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &ComponentRegistry{
		namespace: namespace,
		subsystem: subsystem,
		reg:       reg,
	}
}

func (r *ComponentRegistry) scope(name string) (string, string, string) {
	return r.namespace, r.subsystem, name
}

// NewCounter registers and returns a namespaced counter.
func (r *ComponentRegistry) NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	opts.Namespace, opts.Subsystem, opts.Name = r.scope(opts.Name)
	c := prometheus.NewCounter(opts)
	r.reg.MustRegister(c)
	return c
}

// NewCounterVec registers and returns a namespaced counter vector.
func (r *ComponentRegistry) NewCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	opts.Namespace, opts.Subsystem, opts.Name = r.scope(opts.Name)
	c := prometheus.NewCounterVec(opts, labels)
	r.reg.MustRegister(c)
	return c
}

// NewGauge registers and returns a namespaced gauge.
func (r *ComponentRegistry) NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	opts.Namespace, opts.Subsystem, opts.Name = r.scope(opts.Name)
	g := prometheus.NewGauge(opts)
	r.reg.MustRegister(g)
	return g
}

// NewGaugeVec registers and returns a namespaced gauge vector.
func (r *ComponentRegistry) NewGaugeVec(opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	opts.Namespace, opts.Subsystem, opts.Name = r.scope(opts.Name)
	g := prometheus.NewGaugeVec(opts, labels)
	r.reg.MustRegister(g)
	return g
}

// NewHistogram registers and returns a namespaced histogram.
func (r *ComponentRegistry) NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	opts.Namespace, opts.Subsystem, opts.Name = r.scope(opts.Name)
	h := prometheus.NewHistogram(opts)
	r.reg.MustRegister(h)
	return h
}

// Handler exposes the component's collectors in the prometheus text format.
func (r *ComponentRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
