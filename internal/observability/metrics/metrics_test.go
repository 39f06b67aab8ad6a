package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *MatcherMetrics {
	t.Helper()
	m, err := NewMatcherMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	return m
}

func TestRecordResolution(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordResolution("ORACLE", 3, 120*time.Millisecond)
	m.RecordResolution("HEURISTIC", 5, time.Millisecond)
	m.RecordResolution("HEURISTIC", 5, time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.resolutionsTotal.WithLabelValues("ORACLE")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.resolutionsTotal.WithLabelValues("HEURISTIC")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.shortlistSize))
}

func TestRecordCacheLookup(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues(CacheHit)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues(CacheMiss)))
}

func TestRecordOracleIgnoresEmptyOutcome(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordOracle("", time.Second)
	m.RecordOracle("timeout", 5*time.Second)

	assert.Equal(t, 1, testutil.CollectAndCount(m.oracleOutcomesTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.oracleOutcomesTotal.WithLabelValues("timeout")))
}

func TestRecordCatalogReload(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordCatalogReload("json", StatusSuccess, 42)
	m.RecordCatalogReload("json", StatusError, 0)

	assert.Equal(t, float64(42), testutil.ToFloat64(m.catalogEntries), "failed reload keeps the last size")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.catalogReloadsTotal.WithLabelValues("json", StatusError)))
	assert.Positive(t, testutil.ToFloat64(m.catalogLoadedAt))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *MatcherMetrics
	assert.NotPanics(t, func() {
		m.RecordResolution("NONE", 0, 0)
		m.RecordCacheLookup(true)
		m.RecordOracle("status", 0)
		m.RecordCatalogReload("xlsx", StatusSuccess, 1)
	})
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMatcherMetrics(reg)
	require.NoError(t, err)
	_, err = NewMatcherMetrics(reg)
	assert.Error(t, err)
}

func TestHandlerServesMetrics(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordResolution("REGEX_FALLBACK", 1, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), `label_matcher_resolutions_total{stage="REGEX_FALLBACK"} 1`))
}
