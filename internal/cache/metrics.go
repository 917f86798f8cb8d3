package cache

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Lookup results recorded by ContentCache.
const (
	LookupHit        = "hit"
	LookupMiss       = "miss"
	LookupExpired    = "expired"
	LookupUnreadable = "unreadable"
)

// Removal reasons recorded by ContentCache.
const (
	RemovalExpired     = "expired"
	RemovalInvalidated = "invalidated"
	RemovalCleared     = "cleared"
)

// Backend metrics are labelled by the Group of the ProviderConfig. They count raw
// byte lookups, so an expired content envelope still shows up as a backend hit;
// the content_* series tell the two apart.
var (
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Backend lookups that found a stored value.",
		},
		[]string{"cache"},
	)

	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Backend lookups that found nothing.",
		},
		[]string{"cache"},
	)

	// EvictionsTotal only moves for providers that report evictions (memory, redis).
	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Entries dropped by the backend, by LRU pressure or explicit removal.",
		},
		[]string{"cache"},
	)

	ContentLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_content_lookups_total",
			Help: "Selected-content lookups by result (hit, miss, expired, unreadable).",
		},
		[]string{"cache", "result"},
	)

	ContentRemovalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_content_removals_total",
			Help: "Selected-content entries removed by reason (expired, invalidated, cleared).",
		},
		[]string{"cache", "reason"},
	)
)

// entries reports the live size of every instrumented group at scrape time.
var entries = newEntriesCollector()

func init() {
	prometheus.MustRegister(
		HitsTotal,
		MissesTotal,
		EvictionsTotal,
		ContentLookupsTotal,
		ContentRemovalsTotal,
		entries,
	)
}

// entriesCollector exposes cache_entries{cache=<group>} by asking each group's
// backend for its length when scraped. Redis and Badger expire entries on their
// own, so a counter kept in-process would drift.
type entriesCollector struct {
	desc *prometheus.Desc

	mu     sync.Mutex
	groups map[string]func() int
}

func newEntriesCollector() *entriesCollector {
	return &entriesCollector{
		desc: prometheus.NewDesc(
			"cache_entries",
			"Entries currently held by the cache backend.",
			[]string{"cache"},
			nil,
		),
		groups: make(map[string]func() int),
	}
}

func (e *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.desc
}

func (e *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	e.mu.Lock()
	names := make([]string, 0, len(e.groups))
	for name := range e.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	lens := make([]func() int, len(names))
	for i, name := range names {
		lens[i] = e.groups[name]
	}
	e.mu.Unlock()

	for i, name := range names {
		ch <- prometheus.MustNewConstMetric(e.desc, prometheus.GaugeValue, float64(lens[i]()), name)
	}
}

// track starts reporting group. A later call for the same group replaces the
// previous backend, which happens when a cache is rebuilt.
func (e *entriesCollector) track(group string, lenFunc func() int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.groups[group] = lenFunc
}

func (e *entriesCollector) untrack(group string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.groups, group)
}

func (e *entriesCollector) tracked(group string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.groups[group]
	return ok
}
