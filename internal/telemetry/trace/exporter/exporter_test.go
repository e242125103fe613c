package exporter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice_relay/config"
)

func TestNew(t *testing.T) {
	exp, err := New(context.Background(), config.OTEL{Exporter: "none"})
	require.NoError(t, err)
	assert.Nil(t, exp)

	exp, err = New(context.Background(), config.OTEL{Exporter: "jaeger", Endpoint: "http://localhost:14268/api/traces"})
	require.NoError(t, err)
	require.NotNil(t, exp)
	assert.NoError(t, exp.Shutdown(context.Background()))

	_, err = New(context.Background(), config.OTEL{Exporter: "zipkin"})
	assert.Error(t, err)
}

func TestNewJaeger_Agent(t *testing.T) {
	exp, err := NewJaeger("localhost:6831")
	require.NoError(t, err)
	assert.NoError(t, exp.Shutdown(context.Background()))

	_, err = NewJaeger("localhost")
	assert.Error(t, err)
}
