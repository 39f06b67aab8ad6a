// Package metrics provides Prometheus metrics for variety resolution and catalog loading.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values shared by callers.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

// MatcherMetrics contains Prometheus metrics for the resolution pipeline
type MatcherMetrics struct {
	registry *prometheus.Registry

	resolutionsTotal   *prometheus.CounterVec
	resolutionDuration *prometheus.HistogramVec
	shortlistSize      prometheus.Histogram
	cacheLookupsTotal  *prometheus.CounterVec

	oracleOutcomesTotal *prometheus.CounterVec
	oracleDuration      *prometheus.HistogramVec

	catalogEntries      prometheus.Gauge
	catalogReloadsTotal *prometheus.CounterVec
	catalogLoadedAt     prometheus.Gauge
}

// NewMatcherMetrics creates and registers new matcher metrics
func NewMatcherMetrics(registry *prometheus.Registry) (*MatcherMetrics, error) {
	m := &MatcherMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MatcherMetrics) initMetrics() {
	m.resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "label_matcher_resolutions_total",
			Help: "Total number of resolutions by the stage that produced the answer",
		},
		[]string{"stage"},
	)

	m.resolutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "label_matcher_resolution_duration_seconds",
			Help: "Time taken to resolve one label text",
			// 1ms to ~8s, the oracle dominates the upper range
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"stage"},
	)

	m.shortlistSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "label_matcher_shortlist_size",
		Help:    "Number of candidates offered to the resolution stages",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 12, 16, 20},
	})

	m.cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "label_matcher_cache_lookups_total",
			Help: "Total number of result cache lookups",
		},
		[]string{"result"}, // hit, miss
	)

	m.oracleOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "label_matcher_oracle_outcomes_total",
			Help: "Total number of oracle calls by outcome",
		},
		[]string{"outcome"}, // accepted, invalid, timeout, transport, ...
	)

	m.oracleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "label_matcher_oracle_duration_seconds",
			Help:    "Time taken by oracle calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
		},
		[]string{"outcome"},
	)

	m.catalogEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "label_matcher_catalog_entries",
		Help: "Number of entries in the active catalog snapshot",
	})

	m.catalogReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "label_matcher_catalog_reloads_total",
			Help: "Total number of catalog reload attempts",
		},
		[]string{"source", "status"},
	)

	m.catalogLoadedAt = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "label_matcher_catalog_loaded_timestamp_seconds",
		Help: "Unix time of the last successful catalog load",
	})
}

// Describe implements the Collector interface
func (m *MatcherMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.resolutionsTotal.Describe(ch)
	m.resolutionDuration.Describe(ch)
	m.shortlistSize.Describe(ch)
	m.cacheLookupsTotal.Describe(ch)
	m.oracleOutcomesTotal.Describe(ch)
	m.oracleDuration.Describe(ch)
	m.catalogEntries.Describe(ch)
	m.catalogReloadsTotal.Describe(ch)
	m.catalogLoadedAt.Describe(ch)
}

// Collect implements the Collector interface
func (m *MatcherMetrics) Collect(ch chan<- prometheus.Metric) {
	m.resolutionsTotal.Collect(ch)
	m.resolutionDuration.Collect(ch)
	m.shortlistSize.Collect(ch)
	m.cacheLookupsTotal.Collect(ch)
	m.oracleOutcomesTotal.Collect(ch)
	m.oracleDuration.Collect(ch)
	m.catalogEntries.Collect(ch)
	m.catalogReloadsTotal.Collect(ch)
	m.catalogLoadedAt.Collect(ch)
}

// RecordResolution records one finished resolution and its shortlist size
func (m *MatcherMetrics) RecordResolution(stage string, shortlist int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(stage).Inc()
	m.resolutionDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	m.shortlistSize.Observe(float64(shortlist))
}

// RecordCacheLookup records a cache hit or miss
func (m *MatcherMetrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.cacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordOracle records the outcome of an oracle consultation
func (m *MatcherMetrics) RecordOracle(outcome string, elapsed time.Duration) {
	if m == nil || outcome == "" {
		return
	}
	m.oracleOutcomesTotal.WithLabelValues(outcome).Inc()
	m.oracleDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RecordCatalogReload records a reload attempt; entries is only applied on success
func (m *MatcherMetrics) RecordCatalogReload(source, status string, entries int) {
	if m == nil {
		return
	}
	m.catalogReloadsTotal.WithLabelValues(source, status).Inc()
	if status == StatusSuccess {
		m.catalogEntries.Set(float64(entries))
		m.catalogLoadedAt.SetToCurrentTime()
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *MatcherMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
