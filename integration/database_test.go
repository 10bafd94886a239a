//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startContainer starts req and returns its host and mapped port.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) (string, string) {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	return host, mapped.Port()
}

// exerciseStores runs the cache and run history commands around two align runs.
func exerciseStores(t *testing.T, withAnalysis bool) {
	dir := newProject(t)

	_, err := runSedwarp(t, dir, "cache", "clear")
	require.NoError(t, err)
	if withAnalysis {
		_, err = runSedwarp(t, dir, "analysis", "clear")
		require.NoError(t, err)
	}

	for range 2 {
		_, err = runSedwarp(t, dir, alignArgs()...)
		require.NoError(t, err)
	}

	output, err := runSedwarp(t, dir, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, output, "Total Entries: 1")

	if withAnalysis {
		output, err = runSedwarp(t, dir, "analysis", "status")
		require.NoError(t, err)
		assert.Contains(t, output, "Total Runs: 2")
	}
}

// TestSedwarpWithMySQL tests the sedwarp CLI with a MySQL backend.
func TestSedwarpWithMySQL(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "sedwarp",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}, "3306")

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/sedwarp?parseTime=true&multiStatements=true", host, port)
	t.Setenv("SEDWARP_CACHE_BACKEND", "mysql")
	t.Setenv("SEDWARP_CACHE_DB_CONNECT", connStr)
	t.Setenv("SEDWARP_ANALYSIS_BACKEND", "mysql")
	t.Setenv("SEDWARP_ANALYSIS_DB_CONNECT", connStr)

	exerciseStores(t, true)
}

// TestSedwarpWithPostgres tests the sedwarp CLI with a PostgreSQL backend.
func TestSedwarpWithPostgres(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}, "5432")

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port)
	t.Setenv("SEDWARP_CACHE_BACKEND", "postgresql")
	t.Setenv("SEDWARP_CACHE_DB_CONNECT", connStr)
	t.Setenv("SEDWARP_ANALYSIS_BACKEND", "postgresql")
	t.Setenv("SEDWARP_ANALYSIS_DB_CONNECT", connStr)

	exerciseStores(t, true)
}

// TestSedwarpWithRedis tests the sedwarp CLI with a Redis result cache.
func TestSedwarpWithRedis(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}, "6379")

	t.Setenv("SEDWARP_CACHE_BACKEND", "redis")
	t.Setenv("SEDWARP_CACHE_DB_CONNECT", fmt.Sprintf("redis://%s:%s/0", host, port))

	exerciseStores(t, false)
}
