// Package sqlite implements a kit catalog persisted in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"sheetcore/internal/catalog/core"
	"sheetcore/pkg/domain"
)

const (
	kindSingle = "single"
	kindPaired = "paired"
)

// Store implements core.Store on SQLite. One row per kit entry; saving a kit
// replaces its previous entries in a transaction.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (creating if necessary) a SQLite-backed catalog at path.
func New(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "sheetcore-kits.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &Store{db: db, path: path}
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

func (s *Store) Driver() core.Driver { return core.DriverSQLite }

func (s *Store) SaveKit(ctx context.Context, kit core.Kit) error {
	return s.save(ctx, kit.Name, kindSingle, func(tx *sql.Tx) error {
		for pos, e := range kit.Entries {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO kit_entries (kit, kind, pos, id, i7, i5) VALUES (?, ?, ?, ?, ?, '')`,
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
				`INSERT INTO kit_entries (kit, kind, pos, id, i7, i5) VALUES (?, ?, ?, ?, ?, ?)`,
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
	if _, err := tx.ExecContext(ctx, `DELETE FROM kit_entries WHERE kit = ? AND kind = ?`, name, kind); err != nil {
		return fmt.Errorf("clear kit entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO kits (name, kind) VALUES (?, ?)`, name, kind); err != nil {
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
		`SELECT id, i7 FROM kit_entries WHERE kit = ? AND kind = ? ORDER BY pos`, name, kindSingle)
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
		`SELECT id, i7, i5 FROM kit_entries WHERE kit = ? AND kind = ? ORDER BY pos`, name, kindPaired)
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
		`SELECT COUNT(*) FROM kits WHERE name = ? AND kind = ?`, name, kind).Scan(&n)
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
