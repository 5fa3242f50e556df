package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/iam/internal/iam/store"
	"github.com/aussiebroadwan/iam/internal/iam/store/drivers/postgres"
	"github.com/aussiebroadwan/iam/internal/iam/store/storetest"
)

// startPostgres returns a DSN for a throwaway database. IAM_TEST_DATABASE_URL
// wins when set; otherwise a postgres container is started. The test is
// skipped in -short mode or when no container runtime is reachable.
func startPostgres(t *testing.T) string {
	t.Helper()

	if dsn := os.Getenv("IAM_TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	if testing.Short() {
		t.Skip("postgres tests need a container runtime; skipped in -short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "iam",
			"POSTGRES_PASSWORD": "iam",
			"POSTGRES_DB":       "iam",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://iam:iam@%s:%s/iam?sslmode=disable", host, port.Port())
}

func TestStore(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := postgres.NewStore(pool, dsn)
	require.NoError(t, s.ApplyMigrations())

	version, err := postgres.MigrationVersion(ctx, dsn)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	storetest.Run(t, func(t *testing.T) store.Store {
		_, err := pool.Exec(ctx, `TRUNCATE tenant CASCADE`)
		require.NoError(t, err)
		return s
	})
}
