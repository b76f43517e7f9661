// Package observability exposes Prometheus metrics for the multihost layer.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the host-composition collectors.
type Metrics struct {
	registry *prometheus.Registry

	hostsRegistered prometheus.Gauge
	hostsMounted    prometheus.Counter
	buildFailures   prometheus.Counter
	disposals       prometheus.Counter
}

// NewMetrics creates and registers the collectors on a private registry so
// tests can create as many instances as they like.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "multihost"
	}
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		hostsRegistered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hosts_registered",
			Help:      "Number of hosts currently registered.",
		}),
		hostsMounted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hosts_mounted_total",
			Help:      "Total hosts successfully built and mounted.",
		}),
		buildFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_build_failures_total",
			Help:      "Total host container build or mount failures.",
		}),
		disposals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_disposals_total",
			Help:      "Total host scopes disposed at shutdown.",
		}),
	}
	reg.MustRegister(m.hostsRegistered, m.hostsMounted, m.buildFailures, m.disposals)
	return m
}

// HostMounted records a successful host build + mount.
func (m *Metrics) HostMounted() {
	m.hostsMounted.Inc()
	m.hostsRegistered.Inc()
}

// HostBuildFailed records a failed host build or mount.
func (m *Metrics) HostBuildFailed() {
	m.buildFailures.Inc()
}

// HostsDisposed records the teardown of n host scopes.
func (m *Metrics) HostsDisposed(n int) {
	m.disposals.Add(float64(n))
	m.hostsRegistered.Sub(float64(n))
}

// Handler serves the metrics in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
