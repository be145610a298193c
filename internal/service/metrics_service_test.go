package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsServiceRecordsOperations(t *testing.T) {
	m := NewMetricsService()
	m.ObserveOperation("me", "OK", 10*time.Millisecond)
	m.ObserveOperation("me", "UNAUTHORIZED", time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/query", http.StatusOK, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationTotal.WithLabelValues("me", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationTotal.WithLabelValues("me", "UNAUTHORIZED")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "operations_total")
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestMetricsServiceNilIsSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveOperation("me", "OK", time.Millisecond)
		m.RecordEvent("x", "queued")
		m.RecordCacheOperation(true, time.Millisecond)
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCacheServiceHitRatio(t *testing.T) {
	m := NewMetricsService()
	store := &memoryCache{items: map[string]interface{}{}}
	cache := NewCacheService(store, m, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var dest []string
	hit, err := cache.Get(ctx, "missing", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, cacheKeyRoles, nil, 0))
	require.NoError(t, cache.Invalidate(ctx, cacheKeyRoles))
	assert.Equal(t, 1, store.deletes)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheMisses))

	disabled := NewCacheService(store, m, 0, nil, false)
	hit, err = disabled.Get(ctx, "missing", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, disabled.Enabled())
}
