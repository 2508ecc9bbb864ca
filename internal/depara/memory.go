package depara

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store. It backs tests and single-process
// deployments; entries are replaced atomically under a single mutex so
// readers never observe a half-written entry.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	version int64
	now     func() time.Time
}

// NewMemoryStore constructs an empty in-memory registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		version: 1,
		now:     time.Now,
	}
}

// Seed loads confirmed entries, typically from the canonical mapping.
func (s *MemoryStore) Seed(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = s.now()
		}
		s.entries[e.AccountCode] = e
	}
	s.version++
}

func (s *MemoryStore) Lookup(ctx context.Context, accountCode string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[accountCode]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *MemoryStore) UpsertUnseen(ctx context.Context, accountCode, accountTitle string) (*Entry, error) {
	if accountCode == "" {
		return nil, fmt.Errorf("%w: empty account code", ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[accountCode]; ok {
		return &e, nil
	}
	e := Entry{
		AccountCode:  accountCode,
		AccountTitle: accountTitle,
		Status:       StatusPending,
		UpdatedAt:    s.now(),
	}
	s.entries[accountCode] = e
	s.version++
	return &e, nil
}

func (s *MemoryStore) Confirm(ctx context.Context, accountCode, classification, group string) (*Entry, error) {
	if classification == "" {
		return nil, fmt.Errorf("%w: empty classification", ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[accountCode]
	if !ok {
		return nil, ErrNotFound
	}
	e.Classification = classification
	e.Group = group
	e.Status = StatusOK
	e.UpdatedAt = s.now()
	s.entries[accountCode] = e
	s.version++
	return &e, nil
}

func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]Entry, error) {
	folded := foldSearch(filter.Search)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if matchesFilter(e, filter, folded) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountCode < out[j].AccountCode })
	return out, nil
}

func (s *MemoryStore) Version(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, nil
}
