package ports

import (
	"time"
)

// MetricsCollector receives sweep measurements. Labels are copied by
// implementations that retain them.
type MetricsCollector interface {
	// RecordLatency observes how long an operation took.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter adds value to a monotonically increasing counter, such
	// as completed trials or agreements.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets a point-in-time value, such as the latest agreement
	// rate.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram adds one observation to a distribution.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
