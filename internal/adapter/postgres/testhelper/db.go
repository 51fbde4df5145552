// Package testhelper provides a migrated PostgreSQL database and seed
// helpers for repository and end-to-end tests.
package testhelper

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/heartmarshall/couplefine/internal/adapter/postgres"
)

// DSNEnv points the tests at an existing database instead of a container.
// The database must be empty or already hold these migrations.
const DSNEnv = "COUPLEFINE_TEST_DSN"

var (
	once      sync.Once
	sharedDSN string
	initErr   error
)

// SetupTestDB returns a pool on the shared, migrated test database. The
// database is prepared once per test binary; the pool is closed on cleanup.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("database tests skipped in -short mode")
	}

	once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		sharedDSN, initErr = prepare(ctx)
	})
	if initErr != nil {
		t.Fatalf("testhelper: %v", initErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, sharedDSN)
	if err != nil {
		t.Fatalf("testhelper: open pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// DSN returns the shared database DSN. SetupTestDB must have been called.
func DSN() string { return sharedDSN }

func prepare(ctx context.Context) (string, error) {
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		var err error
		if dsn, err = startContainer(ctx); err != nil {
			return "", err
		}
	}
	if err := migrate(ctx, dsn); err != nil {
		return "", err
	}
	return dsn, nil
}

// startContainer runs postgres:17-alpine. The container lives until the
// test process exits.
func startContainer(ctx context.Context) (string, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "couplefine",
				"POSTGRES_PASSWORD": "couplefine",
				"POSTGRES_DB":       "couplefine_test",
			},
			// Postgres restarts once after init; the second line is the real one.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("container port: %w", err)
	}
	return fmt.Sprintf("postgres://couplefine:couplefine@%s:%s/couplefine_test?sslmode=disable", host, port.Port()), nil
}

// migrate applies the embedded migrations with the same provider the
// migrate command uses.
func migrate(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open pool: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	provider, db, err := postgres.NewMigrator(pool)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
