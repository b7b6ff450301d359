// Package postgres implements a kit catalog persisted in Postgres.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"sheetcore/internal/catalog/core"
	"sheetcore/pkg/domain"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/sheetcore?sslmode=disable"

	kindSingle = "single"
	kindPaired = "paired"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store implements core.Store on Postgres with the same schema as the SQLite
// driver.
type Store struct {
	db *sql.DB
}

// New opens a Postgres-backed catalog using the provided DSN (falls back to
// defaultDSN) and ensures the catalog tables exist.
func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &Store{db: db}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS kits (
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			PRIMARY KEY (name, kind)
		)`,
		`CREATE TABLE IF NOT EXISTS kit_entries (
			kit  TEXT NOT NULL,
			kind TEXT NOT NULL,
			pos  INTEGER NOT NULL,
			id   TEXT NOT NULL,
			i7   TEXT NOT NULL,
			i5   TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (kit, kind, pos)
		)`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create catalog tables: %w", err)
		}
	}
	return nil
}

func (s *Store) Driver() core.Driver { return core.DriverPostgres }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) SaveKit(ctx context.Context, kit core.Kit) error {
	return s.save(ctx, kit.Name, kindSingle, func(tx *sql.Tx) error {
		for pos, e := range kit.Entries {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO kit_entries (kit, kind, pos, id, i7, i5) VALUES ($1, $2, $3, $4, $5, '')`,
				kit.Name, kindSingle, pos, e.ID, e.Sequence); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) SavePairKit(ctx context.Context, kit core.PairKit) error {
	return s.save(ctx, kit.Name, kindPaired, func(tx *sql.Tx) error {
		for pos, e := range kit.Entries {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO kit_entries (kit, kind, pos, id, i7, i5) VALUES ($1, $2, $3, $4, $5, $6)`,
				kit.Name, kindPaired, pos, e.PairID, e.I7, e.I5); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) save(ctx context.Context, name, kind string, insert func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM kit_entries WHERE kit = $1 AND kind = $2`, name, kind); err != nil {
		return fmt.Errorf("clear kit entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO kits (name, kind) VALUES ($1, $2) ON CONFLICT (name, kind) DO NOTHING`, name, kind); err != nil {
		return fmt.Errorf("upsert kit: %w", err)
	}
	if err := insert(tx); err != nil {
		return fmt.Errorf("insert kit entries: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) Kit(ctx context.Context, name string) (core.Kit, error) {
	if err := s.exists(ctx, name, kindSingle, "kit"); err != nil {
		return core.Kit{}, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, i7 FROM kit_entries WHERE kit = $1 AND kind = $2 ORDER BY pos`, name, kindSingle)
	if err != nil {
		return core.Kit{}, fmt.Errorf("select kit entries: %w", err)
	}
	defer func() { _ = rows.Close() }()
	kit := core.Kit{Name: name}
	for rows.Next() {
		var e domain.IndexEntry
		if err := rows.Scan(&e.ID, &e.Sequence); err != nil {
			return core.Kit{}, fmt.Errorf("scan: %w", err)
		}
		kit.Entries = append(kit.Entries, e)
	}
	return kit, rows.Err()
}

func (s *Store) PairKit(ctx context.Context, name string) (core.PairKit, error) {
	if err := s.exists(ctx, name, kindPaired, "pair kit"); err != nil {
		return core.PairKit{}, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, i7, i5 FROM kit_entries WHERE kit = $1 AND kind = $2 ORDER BY pos`, name, kindPaired)
	if err != nil {
		return core.PairKit{}, fmt.Errorf("select pair kit entries: %w", err)
	}
	defer func() { _ = rows.Close() }()
	kit := core.PairKit{Name: name}
	for rows.Next() {
		var e domain.PairIndexEntry
		if err := rows.Scan(&e.PairID, &e.I7, &e.I5); err != nil {
			return core.PairKit{}, fmt.Errorf("scan: %w", err)
		}
		kit.Entries = append(kit.Entries, e)
	}
	return kit, rows.Err()
}

func (s *Store) exists(ctx context.Context, name, kind, label string) error {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM kits WHERE name = $1 AND kind = $2`, name, kind).Scan(&n)
	if err != nil {
		return fmt.Errorf("lookup kit: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound{Kind: label, Name: name}
	}
	return nil
}

func (s *Store) ListKits(ctx context.Context) (single, paired []string, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, kind FROM kits ORDER BY name`)
	if err != nil {
		return nil, nil, fmt.Errorf("select kits: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, nil, fmt.Errorf("scan: %w", err)
		}
		if kind == kindPaired {
			paired = append(paired, name)
		} else {
			single = append(single, name)
		}
	}
	return single, paired, rows.Err()
}

func (s *Store) Close() error { return s.db.Close() }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore
// function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
