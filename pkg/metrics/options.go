package metrics

import (
	"maps"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultLatencyBuckets bound every latency histogram. Latencies are
// observed in milliseconds.
var DefaultLatencyBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500} //nolint:gochecknoglobals // default histogram layout

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace replaces the "perfdash" metric name prefix.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithLatencyBuckets sets the millisecond upper bounds of the latency
// histograms. Bounds that are not strictly increasing are ignored.
func WithLatencyBuckets(ms []float64) Option {
	return func(m *Manager) {
		if !ValidBuckets(ms) {
			return
		}
		m.histogramBuckets = slices.Clone(ms)
	}
}

// WithConstLabels attaches fixed labels, such as a deployment name, to
// every collector.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) > 0 {
			m.constLabels = maps.Clone(labels)
		}
	}
}

// WithRegistry registers the collectors on reg instead of the default registerer.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// ValidBuckets reports whether ms is a non-empty, strictly increasing list
// of positive bounds.
func ValidBuckets(ms []float64) bool {
	if len(ms) == 0 || ms[0] <= 0 {
		return false
	}
	for i := 1; i < len(ms); i++ {
		if ms[i] <= ms[i-1] {
			return false
		}
	}
	return true
}
