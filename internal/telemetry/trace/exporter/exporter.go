package exporter

import (
	"context"

	"github.com/pkg/errors"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"voice_relay/config"
)

// New returns the span exporter selected by OTEL_EXPORTER, or nil for "none".
func New(ctx context.Context, cfg config.OTEL) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "", "none":
		return nil, nil
	case "otlp":
		exp, err := NewOTLP(ctx, cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		return exp, nil
	case "jaeger":
		exp, err := NewJaeger(cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		return exp, nil
	default:
		return nil, errors.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
}
