//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	localparquet "github.com/maintinsight/maintinsight/internal/parquet"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setBackendEnv points both stores at one database for the duration of the test.
func setBackendEnv(t *testing.T, backend, connStr string) {
	t.Setenv("MAINTINSIGHT_CACHE_BACKEND", backend)
	t.Setenv("MAINTINSIGHT_CACHE_DB_CONNECT", connStr)
	t.Setenv("MAINTINSIGHT_ANALYSIS_BACKEND", backend)
	t.Setenv("MAINTINSIGHT_ANALYSIS_DB_CONNECT", connStr)
	t.Setenv("MAINTINSIGHT_MODEL_PATH", exampleModel)
}

// exerciseBackend runs the full command sequence against the configured backend.
func exerciseBackend(t *testing.T) {
	_, err := runCommand(t, "cache", "clear")
	require.NoError(t, err)

	_, err = runCommand(t, "analysis", "clear")
	require.NoError(t, err)

	_, err = runCommand(t, "analysis", "migrate")
	require.NoError(t, err)

	// First run scores, second run is served from the result cache
	for range 2 {
		_, err = runCommand(t, "summary", exampleCSV, "--output", "json")
		require.NoError(t, err)
	}

	out, err := runCommand(t, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected")

	out, err = runCommand(t, "analysis", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs")

	exportBase := filepath.Join(t.TempDir(), "history")
	_, err = runCommand(t, "analysis", "export", "--output-file", exportBase)
	require.NoError(t, err)

	f, err := os.Open(exportBase + ".analysis_runs.parquet")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	reader := parquet.NewGenericReader[localparquet.AnalysisRun](f)
	defer func() { _ = reader.Close() }()
	assert.Equal(t, int64(2), reader.NumRows())
}

// TestWithMySQL tests the CLI with a MySQL backend.
func TestWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "maintinsight",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	// parseTime lets the driver scan DATETIME columns into time.Time
	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/maintinsight?parseTime=true", host, port.Port())
	setBackendEnv(t, "mysql", connStr)
	exerciseBackend(t)
}

// TestWithPostgres tests the CLI with a PostgreSQL backend.
func TestWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	setBackendEnv(t, "postgresql", connStr)
	exerciseBackend(t)
}
