// Package testdb opens the PostgreSQL database used by integration tests.
// Tests are skipped unless a database URL is configured.
package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"
)

const (
	// EnvTestDatabaseURL names the integration database.
	EnvTestDatabaseURL = "VIVA_TEST_DATABASE_URL"
	// EnvDatabaseURL is honored in CI, where services expose DATABASE_URL.
	EnvDatabaseURL = "DATABASE_URL"
)

var ciMarkers = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// IsCI reports whether the tests run under a known CI system.
func IsCI() bool {
	for _, name := range ciMarkers {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// URL returns the integration database URL, or "" when none is configured.
func URL() string {
	if u := os.Getenv(EnvTestDatabaseURL); u != "" {
		return u
	}
	if IsCI() {
		return os.Getenv(EnvDatabaseURL)
	}
	return ""
}

// MigrateFunc brings the schema up to date.
type MigrateFunc func(ctx context.Context, db *sql.DB) error

// Open connects to the integration database, runs migrate and closes the
// pool when the test ends. The test is skipped when no URL is configured.
func Open(t testing.TB, migrate MigrateFunc) *sql.DB {
	t.Helper()
	url := URL()
	if url == "" {
		t.Skipf("%s not set, skipping integration test", EnvTestDatabaseURL)
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "integration database unreachable")
	if migrate != nil {
		require.NoError(t, migrate(ctx, db))
	}
	return db
}

// WithTx runs fn in a transaction that is always rolled back, keeping tests
// isolated from each other.
func WithTx(t testing.TB, db *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	fn(tx)
}
