package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupExposesInstruments(t *testing.T) {
	m, handler, err := Setup("vivabem-test")
	require.NoError(t, err)
	require.NotNil(t, m)

	ctx := context.Background()
	m.RecordRPC(ctx, "posts.list", 0, 15*time.Millisecond)
	m.RecordCacheHit(ctx, "posts.list")
	m.RecordCacheMiss(ctx, "videos.latest")
	m.RecordLogin(ctx, "bad_password")
	m.RecordRateLimited(ctx, "/rpc")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{
		"vivabem_rpc_calls_total",
		"vivabem_rpc_duration_seconds",
		"vivabem_query_cache_hits_total",
		"vivabem_query_cache_misses_total",
		"vivabem_admin_login_attempts_total",
		"vivabem_rate_limited_total",
	} {
		assert.Contains(t, string(body), name)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordRPC(ctx, "posts.list", -32603, time.Second)
		m.RecordCacheHit(ctx, "posts.list")
		m.RecordCacheMiss(ctx, "posts.list")
		m.RecordLogin(ctx, "success")
		m.RecordRateLimited(ctx, "/rpc")
	})
}
