package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type TracingConfig struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

type tracing struct {
	provider *sdktrace.TracerProvider
}

func (t *tracing) shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

// EnableTracing exports spans over OTLP/HTTP. An empty endpoint leaves
// tracing disabled.
func (o *Observability) EnableTracing(ctx context.Context, serviceName string, cfg TracingConfig) error {
	if cfg.Endpoint == "" {
		return nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("create otlp exporter: %w", err)
	}

	return o.EnableTracingWithExporter(serviceName, cfg.SampleRatio, exporter)
}

// EnableTracingWithExporter installs a tracer provider over any span exporter.
func (o *Observability) EnableTracingWithExporter(serviceName string, sampleRatio float64, exporter sdktrace.SpanExporter) error {
	if sampleRatio <= 0 || sampleRatio > 1 {
		sampleRatio = 1
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
	)
	otel.SetTracerProvider(provider)

	o.tracing = &tracing{provider: provider}
	o.tracer = provider.Tracer(serviceName)
	return nil
}

// Flush exports buffered spans.
func (o *Observability) Flush(ctx context.Context) error {
	if o == nil || o.tracing == nil {
		return nil
	}
	return o.tracing.provider.ForceFlush(ctx)
}
