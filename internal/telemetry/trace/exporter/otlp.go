package exporter

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"google.golang.org/grpc"
)

const dialTimeout = 10 * time.Second

func NewOTLP(ctx context.Context, endpoint string) (*otlptrace.Exporter, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	traceClient := otlptracegrpc.NewClient(
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithBlock()))

	traceExp, err := otlptrace.New(ctx, traceClient)
	if err != nil {
		return nil, errors.Wrap(err, "create otlp trace exporter")
	}
	return traceExp, nil
}
