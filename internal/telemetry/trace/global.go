package trace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"voice_relay/config"
	"voice_relay/internal/telemetry/trace/exporter"
)

// InitGlobalProvider installs the global tracer provider for the configured
// exporter. With OTEL_EXPORTER=none it installs nothing and returns a no-op CloseFunc.
func InitGlobalProvider(ctx context.Context, name string, app config.App, cfg config.OTEL) (CloseFunc, error) {
	spanExporter, err := exporter.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if spanExporter == nil {
		return func(context.Context) error { return nil }, nil
	}

	tracerProvider, closeFn, err := NewTraceProviderBuilder(name).
		SetExporter(spanExporter).
		SetVersion(app.Version).
		Build()
	if err != nil {
		return nil, err
	}

	// set global propagator to tracecontext (the default is no-op).
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetTracerProvider(tracerProvider)

	return closeFn, nil
}
