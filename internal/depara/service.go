package depara

import (
	"context"
	"fmt"
	"sort"
)

// Invalidator is notified after every registry mutation so derived
// statement caches can drop stale aggregations.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service coordinates registry operations on top of a Store.
type Service struct {
	store Store
	inval Invalidator
}

// NewService constructs the registry service. The invalidator may be nil.
func NewService(store Store, inval Invalidator) *Service {
	return &Service{store: store, inval: inval}
}

// Store exposes the underlying registry store for collaborators that need
// direct lookups (the reconciliation engine, the statement aggregator).
func (s *Service) Store() Store {
	return s.store
}

// Lookup resolves one entry by account code.
func (s *Service) Lookup(ctx context.Context, accountCode string) (*Entry, error) {
	return s.store.Lookup(ctx, accountCode)
}

// List returns registry entries matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]Entry, error) {
	return s.store.List(ctx, filter)
}

// Pending returns entries awaiting manual classification.
func (s *Service) Pending(ctx context.Context) ([]Entry, error) {
	status := StatusPending
	return s.store.List(ctx, Filter{Status: &status})
}

// Confirm applies a user-confirmed classification to a known account.
// When the caller omits the group, it is derived from the canonical
// classification catalog. Statements aggregated before this call are stale
// and recomputed on the next read.
func (s *Service) Confirm(ctx context.Context, accountCode, classification, group string) (*Entry, error) {
	if group == "" {
		if g, ok := GroupFor(classification); ok {
			group = g.Name
		}
	}
	entry, err := s.store.Confirm(ctx, accountCode, classification, group)
	if err != nil {
		return nil, err
	}
	if s.inval != nil {
		if err := s.inval.Bump(ctx); err != nil {
			return nil, fmt.Errorf("depara: invalidate after confirm: %w", err)
		}
	}
	return entry, nil
}

// Classifications merges the canonical catalog with labels already
// confirmed in the registry, sorted.
func (s *Service) Classifications(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, c := range AllClassifications() {
		seen[c] = struct{}{}
	}
	status := StatusOK
	entries, err := s.store.List(ctx, Filter{Status: &status})
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Classification != "" {
			seen[e.Classification] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}
