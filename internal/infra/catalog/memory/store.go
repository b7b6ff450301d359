// Package memory implements an in-memory kit catalog for tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"sheetcore/internal/catalog/core"
	"sheetcore/pkg/domain"
)

// Store implements core.Store backed by process memory.
type Store struct {
	mu    sync.RWMutex
	kits  map[string]core.Kit
	pairs map[string]core.PairKit
}

// New returns an empty in-memory catalog.
func New() *Store {
	return &Store{kits: make(map[string]core.Kit), pairs: make(map[string]core.PairKit)}
}

func (s *Store) Driver() core.Driver { return core.DriverMemory }

func (s *Store) SaveKit(_ context.Context, kit core.Kit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kits[kit.Name] = cloneKit(kit)
	return nil
}

func (s *Store) Kit(_ context.Context, name string) (core.Kit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kit, ok := s.kits[name]
	if !ok {
		return core.Kit{}, core.ErrNotFound{Kind: "kit", Name: name}
	}
	return cloneKit(kit), nil
}

func (s *Store) SavePairKit(_ context.Context, kit core.PairKit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[kit.Name] = clonePairKit(kit)
	return nil
}

func (s *Store) PairKit(_ context.Context, name string) (core.PairKit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kit, ok := s.pairs[name]
	if !ok {
		return core.PairKit{}, core.ErrNotFound{Kind: "pair kit", Name: name}
	}
	return clonePairKit(kit), nil
}

func (s *Store) ListKits(_ context.Context) (single, paired []string, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for name := range s.kits {
		single = append(single, name)
	}
	for name := range s.pairs {
		paired = append(paired, name)
	}
	sort.Strings(single)
	sort.Strings(paired)
	return single, paired, nil
}

func (s *Store) Close() error { return nil }

func cloneKit(kit core.Kit) core.Kit {
	out := core.Kit{Name: kit.Name, Entries: make([]domain.IndexEntry, len(kit.Entries))}
	copy(out.Entries, kit.Entries)
	return out
}

func clonePairKit(kit core.PairKit) core.PairKit {
	out := core.PairKit{Name: kit.Name, Entries: make([]domain.PairIndexEntry, len(kit.Entries))}
	copy(out.Entries, kit.Entries)
	return out
}
