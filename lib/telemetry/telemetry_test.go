package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShutdownWithoutSetup(t *testing.T) {
	require.NoError(t, Telemetry{}.Shutdown(context.Background()))
}

func TestOtlpConnConfig(t *testing.T) {
	grpc := OtlpConnConfig{GrpcEndpoint: "localhost:4317", HttpEndpoint: "localhost:4318"}
	require.Equal(t, "grpc", grpc.transport())
	require.Equal(t, "localhost:4317", grpc.endpoint())

	http := OtlpConnConfig{HttpEndpoint: "localhost:4318"}
	require.Equal(t, "http", http.transport())
	require.Equal(t, "localhost:4318", http.endpoint())
}

func TestSetupForTestingOnce(t *testing.T) {
	first := SetupForTesting("test:telemetry")
	second := SetupForTesting("test:telemetry")
	second()
	first()
}
