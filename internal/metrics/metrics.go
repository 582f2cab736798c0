package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type Metrics struct {
	HTTPRequests metric.Int64Counter
	HTTPDuration metric.Float64Histogram
	AIRequests   metric.Int64Counter
	AIErrors     metric.Int64Counter
	AIDuration   metric.Float64Histogram
}

func Setup(serviceName string) (*Metrics, http.Handler, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	m, err := newMetrics(provider.Meter(serviceName))
	if err != nil {
		return nil, nil, err
	}

	handler := promhttp.Handler()
	return m, handler, nil
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	var err error
	m := &Metrics{}

	m.HTTPRequests, err = meter.Int64Counter(
		"blog_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	m.HTTPDuration, err = meter.Float64Histogram(
		"blog_http_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, err
	}

	m.AIRequests, err = meter.Int64Counter(
		"blog_ai_requests_total",
		metric.WithDescription("Total number of AI explanation requests"),
	)
	if err != nil {
		return nil, err
	}

	m.AIErrors, err = meter.Int64Counter(
		"blog_ai_errors_total",
		metric.WithDescription("Total number of failed AI explanation requests"),
	)
	if err != nil {
		return nil, err
	}

	m.AIDuration, err = meter.Float64Histogram(
		"blog_ai_duration_seconds",
		metric.WithDescription("AI explanation request duration in seconds"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	labels := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)

	m.HTTPRequests.Add(ctx, 1, labels)
	m.HTTPDuration.Record(ctx, duration.Seconds(), labels)
}

func (m *Metrics) RecordAIRequest(ctx context.Context, resource string, duration time.Duration, err error) {
	labels := metric.WithAttributes(attribute.String("resource", resource))

	m.AIRequests.Add(ctx, 1, labels)
	m.AIDuration.Record(ctx, duration.Seconds(), labels)
	if err != nil {
		m.AIErrors.Add(ctx, 1, labels)
	}
}
