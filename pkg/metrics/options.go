package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option tweaks a Manager before its collectors are registered.
type Option func(*Manager)

// WithNamespace replaces the "slicktrace" namespace. Empty is ignored.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithHistogramBuckets sets the HTTP latency buckets in milliseconds.
func WithHistogramBuckets(b []float64) Option {
	return func(m *Manager) {
		if len(b) > 0 {
			m.histogramBuckets = b
		}
	}
}

// WithMetricsEnabled turns pipeline and store recording on or off.
func WithMetricsEnabled(on bool) Option {
	return func(m *Manager) { m.enabled = on }
}

// WithRefreshInterval sets how often the system gauges are refreshed.
func WithRefreshInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.refreshInterval = d
		}
	}
}

// WithCustomLabels attaches constant labels, e.g. the deployment.
func WithCustomLabels(l map[string]string) Option {
	return func(m *Manager) {
		if l != nil {
			m.customLabels = l
		}
	}
}

// WithPrometheusRegistry registers the collectors on r instead of the
// default registerer.
func WithPrometheusRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}
