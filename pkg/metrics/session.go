package metrics

import "github.com/prometheus/client_golang/prometheus"

// SessionMetrics tracks visitor sessions and catalog refresh sequencing.
type SessionMetrics struct {
	active        prometheus.Gauge
	staleDiscards prometheus.Counter
	refreshes     *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
}

// NewSessionMetrics registers the session metrics on the provided registerer.
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	if reg == nil {
		return &SessionMetrics{}
	}
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_sessions_active",
		Help: "Visitor sessions currently held in memory.",
	})
	stale := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_catalog_stale_responses_total",
		Help: "Catalog responses discarded because a newer query superseded them.",
	})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_catalog_refreshes_total",
		Help: "Catalog refreshes partitioned by result.",
	}, []string{"result"})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_filter_cache_lookups_total",
		Help: "Filter option cache lookups partitioned by hit or miss.",
	}, []string{"result"})
	reg.MustRegister(active, stale, refreshes, lookups)
	return &SessionMetrics{
		active:        active,
		staleDiscards: stale,
		refreshes:     refreshes,
		cacheLookups:  lookups,
	}
}

func (s *SessionMetrics) SetActive(n int) {
	if s == nil || s.active == nil {
		return
	}
	s.active.Set(float64(n))
}

func (s *SessionMetrics) IncStale() {
	if s == nil || s.staleDiscards == nil {
		return
	}
	s.staleDiscards.Inc()
}

func (s *SessionMetrics) IncRefresh(result string) {
	if s == nil || s.refreshes == nil {
		return
	}
	s.refreshes.WithLabelValues(normalizeLabel(result)).Inc()
}

func (s *SessionMetrics) IncCacheLookup(hit bool) {
	if s == nil || s.cacheLookups == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	s.cacheLookups.WithLabelValues(result).Inc()
}
