package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans emitted by this service.
const TracerName = "smart-summarizer"

// tracer delegates to whatever provider is installed globally, so spans
// created before InitProvider runs still reach the real provider afterwards.
var tracer = otel.Tracer(TracerName)

// GetTracer returns the global tracer for creating spans.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "pipeline.generate")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}

// ProviderConfig configures the SDK tracer provider.
type ProviderConfig struct {
	// SampleRatio is the fraction of root spans recorded, 0 to 1.
	SampleRatio float64

	// Processors receive finished spans. With none, spans are sampled and
	// carry real trace ids but are not exported anywhere.
	Processors []sdktrace.SpanProcessor
}

// InitProvider installs an SDK tracer provider and the W3C trace context
// propagator as the process-wide defaults. The returned function flushes and
// shuts the provider down and should be deferred by main.
func InitProvider(cfg ProviderConfig) (func(context.Context) error, error) {
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		return nil, fmt.Errorf("sample ratio must be between 0 and 1, got %v", cfg.SampleRatio)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	for _, p := range cfg.Processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}
