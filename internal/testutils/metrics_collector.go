// Package testutils provides shared test doubles and fixtures for the
// simulation packages.
package testutils

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ahrav/go-verdict/internal/ports"
)

var _ ports.MetricsCollector = (*RecordingMetricsCollector)(nil)

// RecordingMetricsCollector implements ports.MetricsCollector in memory.
// Values are keyed by metric name plus sorted labels, e.g.
// `trials_total{parameter=prob}`. It is safe for concurrent use.
type RecordingMetricsCollector struct {
	mu         sync.Mutex
	latencies  map[string][]time.Duration
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
}

// NewRecordingMetricsCollector creates an empty collector.
func NewRecordingMetricsCollector() *RecordingMetricsCollector {
	return &RecordingMetricsCollector{
		latencies:  make(map[string][]time.Duration),
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

// RecordLatency implements ports.MetricsCollector.
func (c *RecordingMetricsCollector) RecordLatency(operation string, d time.Duration, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := Key(operation, labels)
	c.latencies[key] = append(c.latencies[key], d)
}

// RecordCounter implements ports.MetricsCollector.
func (c *RecordingMetricsCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[Key(metric, labels)] += value
}

// RecordGauge implements ports.MetricsCollector.
func (c *RecordingMetricsCollector) RecordGauge(metric string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[Key(metric, labels)] = value
}

// RecordHistogram implements ports.MetricsCollector.
func (c *RecordingMetricsCollector) RecordHistogram(metric string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := Key(metric, labels)
	c.histograms[key] = append(c.histograms[key], value)
}

// Counter returns the accumulated counter value for key.
func (c *RecordingMetricsCollector) Counter(key string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[key]
}

// Gauge returns the last gauge value for key.
func (c *RecordingMetricsCollector) Gauge(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.gauges[key]
	return v, ok
}

// Histogram returns a copy of the observations for key.
func (c *RecordingMetricsCollector) Histogram(key string) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]float64(nil), c.histograms[key]...)
}

// Latencies returns a copy of the recorded latencies for key.
func (c *RecordingMetricsCollector) Latencies(key string) []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.latencies[key]...)
}

// Key renders a metric name and labels in a stable form.
func Key(metric string, labels map[string]string) string {
	if len(labels) == 0 {
		return metric
	}
	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return metric + "{" + strings.Join(pairs, ",") + "}"
}
