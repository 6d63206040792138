package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func TestInit_DisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "bookhatch-api"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, span := Start(context.Background(), "noop")
	defer span.End()
	RecordError(span, errors.New("ignored"))
	assert.False(t, span.SpanContext().IsValid())
}

func TestNewResource(t *testing.T) {
	res, err := newResource(Config{ServiceName: "bookhatch-api", ServiceVersion: "1.2.0", Environment: "staging"})
	require.NoError(t, err)

	name, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "bookhatch-api", name.AsString())
	version, ok := res.Set().Value(semconv.ServiceVersionKey)
	require.True(t, ok)
	assert.Equal(t, "1.2.0", version.AsString())
	env, ok := res.Set().Value(semconv.DeploymentEnvironmentKey)
	require.True(t, ok)
	assert.Equal(t, "staging", env.AsString())

	bare, err := newResource(Config{ServiceName: "bookhatch-api"})
	require.NoError(t, err)
	_, ok = bare.Set().Value(semconv.ServiceVersionKey)
	assert.False(t, ok)
}

func TestNewSampler(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", newSampler(1).Description())
	assert.Equal(t, "AlwaysOffSampler", newSampler(0).Description())
	assert.Equal(t, "TraceIDRatioBased{0.25}", newSampler(0.25).Description())
}
