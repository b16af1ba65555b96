// Package metrics exposes the service's OpenTelemetry instruments through a
// Prometheus scrape endpoint.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds the instruments recorded by the RPC layer and the query
// cache. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RPCCalls       metric.Int64Counter
	RPCDuration    metric.Float64Histogram
	CacheHits      metric.Int64Counter
	CacheMisses    metric.Int64Counter
	LoginAttempts  metric.Int64Counter
	RateLimitDrops metric.Int64Counter
}

// Setup builds a meter provider backed by a dedicated Prometheus registry and
// returns the instruments together with the /metrics handler.
func Setup(serviceName string) (*Metrics, http.Handler, error) {
	reg := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	m := &Metrics{}

	m.RPCCalls, err = meter.Int64Counter(
		"vivabem_rpc_calls_total",
		metric.WithDescription("Total number of RPC calls by method and result code"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.RPCDuration, err = meter.Float64Histogram(
		"vivabem_rpc_duration_seconds",
		metric.WithDescription("RPC call duration in seconds"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.CacheHits, err = meter.Int64Counter(
		"vivabem_query_cache_hits_total",
		metric.WithDescription("Total number of query cache hits"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.CacheMisses, err = meter.Int64Counter(
		"vivabem_query_cache_misses_total",
		metric.WithDescription("Total number of query cache misses"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.LoginAttempts, err = meter.Int64Counter(
		"vivabem_admin_login_attempts_total",
		metric.WithDescription("Admin login attempts by outcome"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.RateLimitDrops, err = meter.Int64Counter(
		"vivabem_rate_limited_total",
		metric.WithDescription("Requests rejected by the per-IP rate limiter"),
	)
	if err != nil {
		return nil, nil, err
	}

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return m, handler, nil
}

// RecordRPC records one dispatched call. code is 0 for success.
func (m *Metrics) RecordRPC(ctx context.Context, method string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := metric.WithAttributes(
		attribute.String("method", method),
		attribute.Int("code", code),
	)

	m.RPCCalls.Add(ctx, 1, labels)
	m.RPCDuration.Record(ctx, duration.Seconds(), labels)
}

func (m *Metrics) RecordCacheHit(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.CacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

func (m *Metrics) RecordCacheMiss(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.CacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

// RecordLogin records an admin login attempt; outcome is "success",
// "bad_password" or "bad_code".
func (m *Metrics) RecordLogin(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordRateLimited(ctx context.Context, path string) {
	if m == nil {
		return
	}
	m.RateLimitDrops.Add(ctx, 1, metric.WithAttributes(attribute.String("path", path)))
}
