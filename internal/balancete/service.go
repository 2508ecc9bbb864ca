package balancete

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/demonstra-fin/demonstra/internal/depara"
	"github.com/demonstra-fin/demonstra/internal/platform/httpx"
)

const maxRecentImports = 20

// WarmupEnqueuer schedules a statement cache warmup after an import.
type WarmupEnqueuer interface {
	EnqueueWarmup(ctx context.Context, year int) error
}

// Service is the reconciliation engine: it bridges raw imports and the
// DEPARA registry without ever losing an account.
type Service struct {
	registry depara.Store
	lines    LineStore
	inval    depara.Invalidator
	warmup   WarmupEnqueuer
	logger   *slog.Logger

	mu     sync.Mutex
	recent []ImportSummary
}

// NewService constructs the reconciliation service. Invalidator and
// enqueuer may be nil.
func NewService(registry depara.Store, lines LineStore, inval depara.Invalidator, warmup WarmupEnqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: registry,
		lines:    lines,
		inval:    inval,
		warmup:   warmup,
		logger:   logger,
	}
}

// Import reconciles and persists one batch of line items for a fiscal year.
// Structurally invalid rows are skipped with a warning; the batch proceeds
// (partial failure, never all-or-nothing). Every valid account code ends up
// with a registry entry: unseen codes become Pendente entries.
func (s *Service) Import(ctx context.Context, year int, periods []string, items []LineItem) (*Report, error) {
	if year <= 0 {
		return nil, fmt.Errorf("%w: invalid year %d", httpx.ErrValidation, year)
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("%w: empty period set", httpx.ErrValidation)
	}

	report := &Report{
		BatchID:     uuid.NewString(),
		Ano:         year,
		NovasContas: []NewAccount{},
		Warnings:    []string{},
	}

	declared := make(map[string]struct{}, len(periods))
	for _, p := range periods {
		declared[p] = struct{}{}
	}

	accepted := make([]LineItem, 0, len(items))
	seen := make(map[string]int, len(items))
	for i, item := range items {
		if item.AccountCode == "" {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("linha %d sem codigo_conta — ignorada", i+1))
			continue
		}

		// Copy values so merges never mutate the caller's maps. Values
		// keyed outside the declared period set never reach the store.
		itemPeriods := make([]string, 0, len(item.Values))
		for p := range item.Values {
			itemPeriods = append(itemPeriods, p)
		}
		sort.Strings(itemPeriods)
		values := make(map[string]float64, len(item.Values))
		for _, p := range itemPeriods {
			if _, ok := declared[p]; !ok {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("linha %d: período %s fora do lote — valor ignorado", i+1, p))
				continue
			}
			values[p] = item.Values[p]
		}

		if idx, dup := seen[item.AccountCode]; dup {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("linha %d duplica a conta %s — valores somados", i+1, item.AccountCode))
			for p, v := range values {
				accepted[idx].Values[p] += v
			}
			continue
		}

		entry, err := s.registry.Lookup(ctx, item.AccountCode)
		if errors.Is(err, depara.ErrNotFound) {
			entry, err = s.registry.UpsertUnseen(ctx, item.AccountCode, item.AccountTitle)
			if err == nil {
				suggestion, group := depara.Suggest(item.AccountCode)
				report.NovasContas = append(report.NovasContas, NewAccount{
					AccountCode:             item.AccountCode,
					AccountTitle:            item.AccountTitle,
					SuggestedClassification: suggestion,
					SuggestedGroup:          group,
				})
			}
		}
		if err != nil {
			return nil, fmt.Errorf("balancete: reconcile %s: %w", item.AccountCode, err)
		}
		if entry.Status == depara.StatusPending {
			report.PendingCount++
		}
		item.Values = values
		seen[item.AccountCode] = len(accepted)
		accepted = append(accepted, item)
	}
	report.LinhasImportadas = len(accepted)

	if err := s.lines.ReplacePeriods(ctx, year, periods, accepted); err != nil {
		return nil, err
	}

	if s.inval != nil {
		if err := s.inval.Bump(ctx); err != nil {
			s.logger.Warn("bump statement cache", slog.Any("error", err))
		}
	}
	if s.warmup != nil {
		if err := s.warmup.EnqueueWarmup(ctx, year); err != nil {
			s.logger.Warn("enqueue statement warmup", slog.Int("year", year), slog.Any("error", err))
		}
	}

	s.remember(ImportSummary{
		BatchID:          report.BatchID,
		Ano:              year,
		Periodos:         append([]string(nil), periods...),
		LinhasImportadas: report.LinhasImportadas,
		NovasContas:      len(report.NovasContas),
		Warnings:         report.Warnings,
		Timestamp:        time.Now(),
	})

	s.logger.Info("import reconciled",
		slog.String("batch_id", report.BatchID),
		slog.Int("year", year),
		slog.Int("linhas", report.LinhasImportadas),
		slog.Int("novas_contas", len(report.NovasContas)),
		slog.Int("pending", report.PendingCount))

	return report, nil
}

// RecentImports returns the latest import summaries, newest first.
func (s *Service) RecentImports() []ImportSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ImportSummary(nil), s.recent...)
}

func (s *Service) remember(summary ImportSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append([]ImportSummary{summary}, s.recent...)
	if len(s.recent) > maxRecentImports {
		s.recent = s.recent[:maxRecentImports]
	}
}
