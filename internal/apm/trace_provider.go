// Package apm wires the OTEL trace provider and thin tracer/span wrappers.
package apm

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"watcharb/internal/logger"
)

// Provider names a span exporter backend.
type Provider string

const (
	OTLPGRPCProvider Provider = "otlp-grpc"
	OTLPHTTPProvider Provider = "otlp-http"
	ZipkinProvider   Provider = "zipkin"
	ConsoleProvider  Provider = "console"
	EmptyProvider    Provider = "empty"
)

// TraceProvider owns exporter lifecycle.
type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

// Config selects and configures the span exporter.
type Config struct {
	Provider    Provider
	ServiceName string
	Endpoint    string
	Headers     string // "key=value" pairs, comma separated
}

// NewTraceProvider builds the exporter named by cfg, installs the global
// tracer provider and propagators, and returns a handle for shutdown. An
// unknown or empty provider yields a no-op.
func NewTraceProvider(cfg Config, log logger.LoggerInterface) (TraceProvider, error) {
	ctx := context.Background()

	var (
		exp sdktrace.SpanExporter
		err error
	)

	switch cfg.Provider {
	case OTLPGRPCProvider:
		exp, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpointURL(cfg.Endpoint),
			otlptracegrpc.WithHeaders(parseHeaders(cfg.Headers)),
		)
	case OTLPHTTPProvider:
		exp, err = otlptracehttp.New(ctx,
			otlptracehttp.WithEndpointURL(cfg.Endpoint),
			otlptracehttp.WithHeaders(parseHeaders(cfg.Headers)),
		)
	case ZipkinProvider:
		exp, err = zipkin.New(cfg.Endpoint)
	case ConsoleProvider:
		exp, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case EmptyProvider:
		return NewEmptyTraceProvider(), nil
	default:
		log.Warn(ctx, "unknown trace provider, tracing disabled", "provider", string(cfg.Provider))
		return NewEmptyTraceProvider(), nil
	}
	if err != nil {
		return nil, err
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
			attribute.String("otel.provider", string(cfg.Provider)),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &traceProvider{tp}, nil
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return o.tp.Shutdown(ctx)
}

func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) == 2 && kv[0] != "" {
			headers[kv[0]] = kv[1]
		}
	}
	return headers
}
