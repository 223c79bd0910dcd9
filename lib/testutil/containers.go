package testutil

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	devenv "txpipeline/dev/env"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	minioUser     = "txpipeline"
	minioPassword = "txpipeline-secret"
)

func startContainer(t testing.TB, req testcontainers.ContainerRequest) testcontainers.Container {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	container, err := runContainer(req)
	if err != nil {
		t.Skipf("could not start %s: %v", req.Image, err)
	}
	t.Cleanup(func() {
		err := container.Terminate(context.Background())
		if err != nil {
			t.Error(err)
		}
	})
	return container
}

// runContainer reports a missing docker host as an error instead of a panic.
func runContainer(req testcontainers.ContainerRequest) (container testcontainers.Container, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("container runtime unavailable: %v", r)
		}
	}()
	return testcontainers.GenericContainer(
		context.Background(),
		testcontainers.GenericContainerRequest{
			Started:          true,
			ContainerRequest: req,
		},
	)
}

// StartPostgres returns the DSN in dev/.state/postgres.json5 when present,
// otherwise it runs a throwaway postgres. The test is skipped in short mode
// or when no container runtime is available.
func StartPostgres(t testing.TB) string {
	if cfg, err := devenv.GetStateConfig[devenv.PostgresTestConfig]("postgres.json5"); err == nil && cfg.DSN != "" {
		return cfg.DSN
	}

	container := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "txpipeline",
			"POSTGRES_PASSWORD": "txpipeline",
			"POSTGRES_DB":       "txpipeline",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	})
	ctx := context.Background()
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf(
		"host=%s port=%s user=txpipeline password=txpipeline dbname=txpipeline sslmode=disable",
		host, port.Port(),
	)
}

// StartS3 returns the bucket in dev/.state/s3.json5 when present, otherwise
// it runs a throwaway minio. The bucket may not exist yet.
func StartS3(t testing.TB) devenv.S3TestConfig {
	if cfg, err := devenv.GetStateConfig[devenv.S3TestConfig]("s3.json5"); err == nil && cfg.Bucket != "" {
		return cfg
	}

	container := startContainer(t, testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPassword,
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
	})
	endpoint, err := container.PortEndpoint(context.Background(), "9000/tcp", "http")
	if err != nil {
		t.Fatal(err)
	}
	return devenv.S3TestConfig{
		Bucket:          "txpipeline",
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     minioUser,
		SecretAccessKey: minioPassword,
	}
}
