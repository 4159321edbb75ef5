package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tripnest/tripnest/pkg/telemetry"
	"go.opentelemetry.io/otel"
)

func TestInitTracerWithoutEndpoint(t *testing.T) {
	shutdown, err := telemetry.InitTracer(context.Background(), telemetry.Config{ServiceName: "web"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	fields := otel.GetTextMapPropagator().Fields()
	require.Contains(t, fields, "traceparent")
	require.Contains(t, fields, "baggage")
}
