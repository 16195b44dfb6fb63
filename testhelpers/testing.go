package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"kitchenstock/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnvTestDatabaseURL names the DSN used by database-backed tests.
const EnvTestDatabaseURL = "KS_TEST_DATABASE_URL"

// TestDB holds the database connection for testing
type TestDB struct {
	Pool *pgxpool.Pool
}

// SetupTestDB connects to the test database and applies all migrations.
// The test is skipped when no DSN is configured.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := os.Getenv(EnvTestDatabaseURL)
	if dsn == "" {
		t.Skipf("%s not set, skipping database test", EnvTestDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, dsn, database.PoolOptions{MaxConns: 4, ConnectTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool, "up"); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(pool.Close)
	return &TestDB{Pool: pool}
}

// SetupTestTenant inserts a tenant and removes it, with all of its rows,
// when the test ends.
func SetupTestTenant(t *testing.T, db *TestDB, code string) string {
	t.Helper()

	ctx := context.Background()
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO tenants (code, name, status, created_at, updated_at)
		VALUES ($1, $2, 'active', NOW(), NOW())
		ON CONFLICT (code) DO NOTHING
	`, code, "Test kitchen "+code)
	if err != nil {
		t.Fatalf("Failed to create test tenant: %v", err)
	}

	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM tenants WHERE code = $1`, code)
	})
	return code
}
