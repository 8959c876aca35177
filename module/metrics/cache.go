package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tapnet/tap-core/module"
)

type CacheCollector struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

var _ module.CacheMetrics = (*CacheCollector)(nil)

func NewCacheCollector(registerer prometheus.Registerer) *CacheCollector {
	cc := &CacheCollector{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "cache_hits_total",
			Namespace: namespaceTap,
			Subsystem: subsystemChecks,
			Help:      "number of lookups served from the cache",
		}, []string{LabelResource}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "cache_misses_total",
			Namespace: namespaceTap,
			Subsystem: subsystemChecks,
			Help:      "number of lookups that went to the database",
		}, []string{LabelResource}),
	}
	registerer.MustRegister(cc.hits, cc.misses)
	return cc
}

func (cc *CacheCollector) CacheHit(resource string) {
	cc.hits.WithLabelValues(resource).Inc()
}

func (cc *CacheCollector) CacheMiss(resource string) {
	cc.misses.WithLabelValues(resource).Inc()
}
