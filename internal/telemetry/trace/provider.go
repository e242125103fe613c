package trace

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// CloseFunc flushes and stops a provider.
type CloseFunc func(ctx context.Context) error

type TraceProviderBuilder struct {
	name     string
	version  string
	exporter sdktrace.SpanExporter
	sampler  sdktrace.Sampler
}

func NewTraceProviderBuilder(name string) *TraceProviderBuilder {
	return &TraceProviderBuilder{name: name, sampler: sdktrace.AlwaysSample()}
}

func (b *TraceProviderBuilder) SetExporter(exp sdktrace.SpanExporter) *TraceProviderBuilder {
	b.exporter = exp
	return b
}

func (b *TraceProviderBuilder) SetVersion(version string) *TraceProviderBuilder {
	b.version = version
	return b
}

func (b *TraceProviderBuilder) SetSampler(s sdktrace.Sampler) *TraceProviderBuilder {
	b.sampler = s
	return b
}

func (b *TraceProviderBuilder) Build() (*sdktrace.TracerProvider, CloseFunc, error) {
	if b.exporter == nil {
		return nil, nil, errors.New("trace exporter is not set")
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", b.name),
			attribute.String("service.version", b.version),
		),
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "build trace resource")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(b.sampler)),
		sdktrace.WithBatcher(b.exporter),
		sdktrace.WithResource(res),
	)

	return tp, tp.Shutdown, nil
}
