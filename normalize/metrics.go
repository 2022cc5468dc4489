package normalize

import (
	"github.com/meikuraledutech/timeline"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	entitiesNormalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "timeline",
			Subsystem: "normalize",
			Name:      "entities_total",
			Help:      "The number of raw entities normalized successfully.",
		}, []string{"kind"})
	entityFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "timeline",
			Subsystem: "normalize",
			Name:      "entity_failures_total",
			Help:      "The number of raw entities that failed to normalize.",
		}, []string{"kind", "reason"})
	payloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "timeline",
			Subsystem: "normalize",
			Name:      "payload_duration_seconds",
			Help:      "The time it took to normalize one payload.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 18),
		}, []string{"kind", "envelope"})
)

// InitMetrics registers all metrics in the normalize package
func InitMetrics(registry *prometheus.Registry) {
	registry.MustRegister(entitiesNormalized)
	registry.MustRegister(entityFailures)
	registry.MustRegister(payloadDuration)
}

func failureReason(err error) string {
	switch {
	case timeline.ErrPatternMismatch.Equal(err):
		return "pattern_mismatch"
	case timeline.ErrShapeMismatch.Equal(err):
		return "shape_mismatch"
	}
	return "other"
}
