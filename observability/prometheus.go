// Copyright 2026 The Flowstone Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	execctx "github.com/flowstone/engine/context"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "flowstone"

var _ execctx.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics creates Prometheus collectors on first use of a metric
// name and registers them with the configured registerer. Names ending in
// _total become counters; names passed to Observe become histograms;
// names passed to Set become gauges.
type PrometheusMetrics struct {
	registerer prometheus.Registerer
	namespace  string
	buckets    []float64

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	histograms map[string]prometheus.Histogram
	gauges     map[string]prometheus.Gauge
}

// PrometheusOption configures PrometheusMetrics.
type PrometheusOption func(*PrometheusMetrics)

// WithNamespace sets the metric namespace. Default is "flowstone".
func WithNamespace(namespace string) PrometheusOption {
	return func(m *PrometheusMetrics) {
		m.namespace = namespace
	}
}

// WithBuckets sets histogram buckets. Default is prometheus.DefBuckets.
func WithBuckets(buckets []float64) PrometheusOption {
	return func(m *PrometheusMetrics) {
		m.buckets = buckets
	}
}

// NewPrometheusMetrics creates a collector registering with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusMetrics(reg prometheus.Registerer, opts ...PrometheusOption) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PrometheusMetrics{
		registerer: reg,
		namespace:  DefaultNamespace,
		buckets:    prometheus.DefBuckets,
		counters:   make(map[string]prometheus.Counter),
		histograms: make(map[string]prometheus.Histogram),
		gauges:     make(map[string]prometheus.Gauge),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Inc implements execctx.MetricsCollector.
func (m *PrometheusMetrics) Inc(name string) {
	m.counter(name).Inc()
}

// Add implements execctx.MetricsCollector. Negative values are ignored
// since counters only go up.
func (m *PrometheusMetrics) Add(name string, value float64) {
	if value < 0 {
		return
	}
	m.counter(name).Add(value)
}

// Observe implements execctx.MetricsCollector.
func (m *PrometheusMetrics) Observe(name string, value float64) {
	m.histogram(name).Observe(value)
}

// Set implements execctx.MetricsCollector.
func (m *PrometheusMetrics) Set(name string, value float64) {
	m.gauge(name).Set(value)
}

func (m *PrometheusMetrics) counter(name string) prometheus.Counter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.counters[name]; ok {
		return c
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      sanitize(name),
		Help:      helpText(name),
	})
	c = register(m.registerer, c).(prometheus.Counter)
	m.counters[name] = c
	return c
}

func (m *PrometheusMetrics) histogram(name string) prometheus.Histogram {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.histograms[name]; ok {
		return h
	}
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      sanitize(name),
		Help:      helpText(name),
		Buckets:   m.buckets,
	})
	h = register(m.registerer, h).(prometheus.Histogram)
	m.histograms[name] = h
	return h
}

func (m *PrometheusMetrics) gauge(name string) prometheus.Gauge {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g, ok := m.gauges[name]; ok {
		return g
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      sanitize(name),
		Help:      helpText(name),
	})
	g = register(m.registerer, g).(prometheus.Gauge)
	m.gauges[name] = g
	return g
}

// register registers c, reusing an existing collector with the same
// descriptor so two PrometheusMetrics on one registry share series.
func register(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
	}
	return c
}

// sanitize maps dotted or dashed names onto the Prometheus name charset.
func sanitize(name string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(name)
}

func helpText(name string) string {
	return "Flowstone engine metric " + sanitize(name)
}
