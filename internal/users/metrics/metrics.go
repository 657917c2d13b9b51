package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "users_cache_hits_total",
		Help: "User reads served from the cache",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "users_cache_misses_total",
		Help: "User reads that fell back to the relational store",
	})
)

// Metrics exposes Users service counters. Registration happens once at
// package init, so constructing Metrics repeatedly (as tests do) is safe.
type Metrics struct{}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) CacheHit() {
	cacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	cacheMisses.Inc()
}
