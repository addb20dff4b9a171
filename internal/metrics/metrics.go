// Package metrics wires the OTEL meter provider and the Prometheus scrape
// endpoint.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

// MetricProvider is the subset of the SDK meter provider the application uses.
type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

// NewMetricProvider builds a meter provider with the configured readers and
// installs it as the global OTEL meter provider.
func NewMetricProvider(options ...OptionFn) (MetricProvider, error) {
	ctx := context.Background()

	var cfg Config
	for _, opt := range options {
		cfg = opt(cfg)
	}

	readers, err := buildReaders(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := make([]sdkmetric.Option, 0, len(readers)+1)
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	opts = append(opts, sdkmetric.WithResource(
		resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.ServiceName)),
	))

	provider := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(provider)

	return provider, nil
}

func buildReaders(ctx context.Context, cfg Config) ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	for _, provider := range cfg.Providers {
		switch provider.Provider {
		case PrometheusProvider:
			exp, err := promexporter.New()
			if err != nil {
				return nil, fmt.Errorf("metrics: prometheus exporter: %w", err)
			}
			readers = append(readers, exp)
		case OTLPCollector:
			grpcOpts := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpointURL(provider.Endpoint),
				otlpmetricgrpc.WithHeaders(provider.Headers),
			}
			if provider.Insecure {
				grpcOpts = append(grpcOpts, otlpmetricgrpc.WithInsecure())
			}
			exp, err := otlpmetricgrpc.New(ctx, grpcOpts...)
			if err != nil {
				return nil, fmt.Errorf("metrics: otlp exporter: %w", err)
			}
			readers = append(readers, sdkmetric.NewPeriodicReader(exp))
		}
	}

	if len(readers) == 0 {
		exp, err := promexporter.New()
		if err != nil {
			return nil, fmt.Errorf("metrics: prometheus exporter: %w", err)
		}
		readers = append(readers, exp)
	}

	return readers, nil
}

// ServePrometheusMetrics runs the /metrics scrape endpoint. Blocks until the
// server exits.
func ServePrometheusMetrics(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics: serve prometheus: %w", err)
	}
	return nil
}
