package statement

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/demonstra-fin/demonstra/internal/balancete"
	"github.com/demonstra-fin/demonstra/internal/depara"
)

// Service builds statements on demand. Nothing derived is persisted: a
// build reads one registry snapshot plus the stored line items, so results
// are internally consistent even while classifications are being confirmed.
// Cache keys carry the registry version, which makes confirmations visible
// on the very next read, and singleflight collapses concurrent builds of
// the same statement.
type Service struct {
	logger   *slog.Logger
	registry depara.Store
	lines    balancete.LineStore
	cache    *Cache
	policy   IndicatorPolicy

	group singleflight.Group
}

// NewService wires the statement builder. cache may be nil in tests.
func NewService(logger *slog.Logger, registry depara.Store, lines balancete.LineStore, cache *Cache, policy IndicatorPolicy) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, registry: registry, lines: lines, cache: cache, policy: policy}
}

// Statement returns the built statement of the given kind for one year.
func (s *Service) Statement(ctx context.Context, kind Kind, year int) (*Result, error) {
	key, err := s.buildKey(ctx, keyStatement(kind, year, s.registryVersion(ctx)))
	if err != nil {
		return nil, err
	}
	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		var result Result
		err := s.cache.FetchJSON(ctx, key, &result, func(ctx context.Context) (interface{}, error) {
			return s.build(ctx, kind, year)
		})
		if err != nil {
			return nil, err
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*Result), nil
}

// Indicators derives the indicator set for one year from the DRE.
func (s *Service) Indicators(ctx context.Context, year int) (*IndicatorSet, error) {
	key, err := s.buildKey(ctx, keyIndicators(year, s.registryVersion(ctx)))
	if err != nil {
		return nil, err
	}
	var set IndicatorSet
	err = s.cache.FetchJSON(ctx, key, &set, func(ctx context.Context) (interface{}, error) {
		dre, err := s.Statement(ctx, KindDRE, year)
		if err != nil {
			return nil, err
		}
		return ComputeIndicators(year, dre.Rows, s.policy), nil
	})
	if err != nil {
		return nil, err
	}
	return &set, nil
}

// Summary reports which periods and years carry imported data.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	periods, err := s.lines.Periods(ctx)
	if err != nil {
		return nil, fmt.Errorf("statement: list periods: %w", err)
	}
	seen := make(map[int]struct{})
	var years []int
	for _, p := range periods {
		if i := strings.IndexByte(p, '-'); i > 0 {
			if y, err := strconv.Atoi(p[:i]); err == nil {
				if _, ok := seen[y]; !ok {
					seen[y] = struct{}{}
					years = append(years, y)
				}
			}
		}
	}
	sort.Ints(years)
	return &Summary{Periods: periods, Years: years}, nil
}

// Cache exposes the underlying cache so registry and import writers can
// bump it on mutation.
func (s *Service) Cache() *Cache {
	return s.cache
}

func (s *Service) build(ctx context.Context, kind Kind, year int) (*Result, error) {
	items, periods, err := s.lines.LinesForYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("statement: load lines for %d: %w", year, err)
	}
	snapshot, err := s.registry.List(ctx, depara.Filter{})
	if err != nil {
		return nil, fmt.Errorf("statement: load registry snapshot: %w", err)
	}
	entries := make(map[string]depara.Entry, len(snapshot))
	for _, e := range snapshot {
		entries[e.AccountCode] = e
	}

	result := &Result{Statement: kind, Year: year}
	switch kind {
	case KindDFC:
		dre, _ := Build(KindDRE, items, entries, periods)
		bp, _ := Build(KindBP, items, entries, periods)
		result.Rows, result.Structure = BuildDFC(dre, bp, periods)
	default:
		result.Rows, result.Structure = Build(kind, items, entries, periods)
	}

	if pending := countUnresolved(items, entries); pending > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%d conta(s) sem classificação aplicável; valores agrupados em %q", pending, UnclassifiedGroup))
	}
	if len(items) == 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("nenhum balancete importado para %d", year))
	}
	return result, nil
}

// countUnresolved counts accounts that render under "Não Classificado":
// pending entries plus confirmed ones whose group matches no statement
// section. Mirrors the builder's resolveGroup decision.
func countUnresolved(items []balancete.LineItem, entries map[string]depara.Entry) int {
	unresolved := 0
	for _, item := range items {
		entry, ok := entries[item.AccountCode]
		if !ok {
			unresolved++
			continue
		}
		if _, resolved := resolveGroup(entry); !resolved {
			unresolved++
		}
	}
	return unresolved
}

func (s *Service) registryVersion(ctx context.Context) int64 {
	ver, err := s.registry.Version(ctx)
	if err != nil {
		s.logger.Warn("statement: registry version unavailable", "error", err)
		return 0
	}
	return ver
}

func (s *Service) buildKey(ctx context.Context, base string) (string, error) {
	key, err := s.cache.BuildKey(ctx, base)
	if err != nil {
		return "", fmt.Errorf("statement: build cache key: %w", err)
	}
	return key, nil
}
