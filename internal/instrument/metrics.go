package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SpanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tourism_span_duration_seconds",
			Help:    "Duration of instrumented operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source", "component", "action", "status"},
	)

	// RelatedLookups counts per-collection related-content lookups by outcome:
	// ok, skipped (no filter constructible), failed, cancelled.
	RelatedLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourism_related_lookups_total",
			Help: "Related-content lookups per target collection and outcome",
		},
		[]string{"collection", "outcome"},
	)

	CapabilityProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourism_capability_probes_total",
			Help: "Collection capability probes by result (hit, sampled, empty, failed)",
		},
		[]string{"collection", "result"},
	)
)
