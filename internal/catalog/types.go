// Package catalog re-exports the kit catalog abstractions and wires the
// infra-backed drivers behind constructor functions. Only this package may
// import the infra catalog implementations.
package catalog

import "sheetcore/internal/catalog/core"

type (
	// Driver identifies a catalog backend driver.
	Driver = core.Driver
	// Kit is a named single-index barcode kit.
	Kit = core.Kit
	// PairKit is a named paired barcode kit.
	PairKit = core.PairKit
	// Store is the interface for catalog backends.
	Store = core.Store
	// ErrNotFound reports a missing kit.
	ErrNotFound = core.ErrNotFound
)

const (
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
	// DriverSQLite is the local SQLite driver.
	DriverSQLite = core.DriverSQLite
	// DriverPostgres is the Postgres driver.
	DriverPostgres = core.DriverPostgres
)
