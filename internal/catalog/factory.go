package catalog

import (
	"context"
	"fmt"
	"os"

	memorystore "sheetcore/internal/infra/catalog/memory"
	postgresstore "sheetcore/internal/infra/catalog/postgres"
	sqlitestore "sheetcore/internal/infra/catalog/sqlite"
)

// Open selects a catalog Store implementation using environment variables.
//
//	SHEETCORE_CATALOG_DRIVER: sqlite|postgres|memory (default sqlite)
//	SHEETCORE_CATALOG_SQLITE_PATH: database file when driver=sqlite
//	SHEETCORE_CATALOG_POSTGRES_DSN: connection string when driver=postgres
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("SHEETCORE_CATALOG_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverSQLite:
		return sqlitestore.New(ctx, os.Getenv("SHEETCORE_CATALOG_SQLITE_PATH"))
	case DriverPostgres:
		return postgresstore.New(ctx, os.Getenv("SHEETCORE_CATALOG_POSTGRES_DSN"))
	case DriverMemory:
		return memorystore.New(), nil
	default:
		return nil, fmt.Errorf("unknown catalog driver %s", driver)
	}
}

// NewMemory returns an in-memory catalog suitable for tests.
func NewMemory() Store { return memorystore.New() }

// NewSQLite opens a SQLite-backed catalog at path.
func NewSQLite(ctx context.Context, path string) (Store, error) {
	return sqlitestore.New(ctx, path)
}

// NewPostgres opens a Postgres-backed catalog using dsn.
func NewPostgres(ctx context.Context, dsn string) (Store, error) {
	return postgresstore.New(ctx, dsn)
}
