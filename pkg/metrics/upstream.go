package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics records calls made to the catalog/cart API.
type UpstreamMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewUpstreamMetrics registers the upstream call metrics on the provided registerer.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_upstream_duration_seconds",
		Help:    "Duration of catalog API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_upstream_requests_total",
		Help: "Catalog API calls partitioned by outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(duration, requests)
	return &UpstreamMetrics{
		duration: duration,
		requests: requests,
	}
}

// Observe records the duration and outcome of one upstream call.
func (u *UpstreamMetrics) Observe(operation, outcome string, duration time.Duration) {
	if u == nil || u.duration == nil {
		return
	}
	op := normalizeLabel(operation)
	u.duration.WithLabelValues(op).Observe(duration.Seconds())
	u.requests.WithLabelValues(op, normalizeLabel(outcome)).Inc()
}
