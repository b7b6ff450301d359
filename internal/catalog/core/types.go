// Package core defines the abstractions shared by kit catalog backends. A
// catalog stores named barcode kits as the production alternative to per-run
// kit CSV files; it holds reference data only, never run history.
package core

import (
	"context"
	"fmt"

	"sheetcore/pkg/domain"
)

// Driver identifies a concrete catalog backend implementation.
type Driver string

const (
	// DriverMemory is the in-memory implementation used in tests.
	DriverMemory Driver = "memory"
	// DriverSQLite persists kits in a local SQLite file.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres persists kits in Postgres.
	DriverPostgres Driver = "postgres"
)

// Kit is a named single-index barcode kit.
type Kit struct {
	Name    string             `json:"name"`
	Entries []domain.IndexEntry `json:"entries"`
}

// PairKit is a named paired barcode kit.
type PairKit struct {
	Name    string                  `json:"name"`
	Entries []domain.PairIndexEntry `json:"entries"`
}

// Store persists named kits. Save replaces an existing kit of the same name
// and kind; lookups return ErrNotFound when absent.
type Store interface {
	SaveKit(ctx context.Context, kit Kit) error
	Kit(ctx context.Context, name string) (Kit, error)
	SavePairKit(ctx context.Context, kit PairKit) error
	PairKit(ctx context.Context, name string) (PairKit, error)
	// ListKits returns all kit names by kind, sorted.
	ListKits(ctx context.Context) (single, paired []string, err error)
	Driver() Driver
	Close() error
}

// ErrNotFound is returned when a named kit does not exist in the catalog.
type ErrNotFound struct {
	Kind string // "kit" or "pair kit"
	Name string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found in catalog", e.Kind, e.Name)
}
