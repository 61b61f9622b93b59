package tracing

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "hollywoo"
	ServiceVersion = "0.3.0"
)

// Tracer owns the installed trace provider
type Tracer struct {
	tp *sdktrace.TracerProvider
}

// Options controls where spans are exported
type Options struct {
	// Endpoint of an OTLP/gRPC collector. Empty means spans are written to Writer.
	Endpoint string
	// Writer receives pretty printed spans when no endpoint is set
	Writer io.Writer
}

// NewTracer creates a tracer and installs it as the global trace provider
func NewTracer(ctx context.Context, serviceName string, opts Options) (*Tracer, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(ServiceVersion),
	)

	var exp sdktrace.SpanExporter
	var err error

	if opts.Endpoint != "" {
		client := otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(opts.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
		exp, err = otlptrace.New(ctx, client)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
	} else {
		stdoutOpts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if opts.Writer != nil {
			stdoutOpts = append(stdoutOpts, stdouttrace.WithWriter(opts.Writer))
		}
		exp, err = stdouttrace.New(stdoutOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &Tracer{tp: tp}, nil
}

// Shutdown flushes pending spans and stops the trace provider
func (t *Tracer) Shutdown(ctx context.Context) error {
	return t.tp.Shutdown(ctx)
}

// Start starts a span on the global provider. Without NewTracer this is a no-op span.
func Start(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(ServiceName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// SetSpanError marks the current span as having an error
func SetSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.RecordError(err)
	}
}

// ScanTracingAttrs returns common attributes for folder scans
func ScanTracingAttrs(runID, root string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(ServiceName),
		attribute.String("component", "scanner"),
	}
	if runID != "" {
		attrs = append(attrs, attribute.String("scan.run_id", runID))
	}
	if root != "" {
		attrs = append(attrs, attribute.String("scan.folder", root))
	}
	return attrs
}
