package balancete

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/demonstra-fin/demonstra/internal/depara"
	"github.com/demonstra-fin/demonstra/internal/platform/httpx"
)

type recordingEnqueuer struct {
	mu    sync.Mutex
	years []int
}

func (r *recordingEnqueuer) EnqueueWarmup(ctx context.Context, year int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.years = append(r.years, year)
	return nil
}

func fixtureItems() []LineItem {
	return []LineItem{
		{AccountCode: "3.01.01.01.00001", AccountTitle: "Receita SaaS", Values: map[string]float64{"2025-01": 1000, "2025-02": 1200}},
		{AccountCode: "4.03.01.09.00001", AccountTitle: "Servidores AWS", Values: map[string]float64{"2025-01": -180}},
		{AccountCode: "5.55.55.55.00001", AccountTitle: "Conta exótica", Values: map[string]float64{"2025-01": -10}},
	}
}

func TestImportRegistersEveryAccount(t *testing.T) {
	ctx := context.Background()
	registry := depara.NewMemoryStore()
	lines := NewMemoryLineStore()
	enq := &recordingEnqueuer{}
	svc := NewService(registry, lines, nil, enq, nil)

	report, err := svc.Import(ctx, 2025, []string{"2025-01", "2025-02"}, fixtureItems())
	require.NoError(t, err)
	require.NotEmpty(t, report.BatchID)
	require.Equal(t, 3, report.LinhasImportadas)
	require.Len(t, report.NovasContas, 3)
	require.Equal(t, 3, report.PendingCount)
	require.Empty(t, report.Warnings)

	// Every imported code resolved to a registry entry.
	for _, item := range fixtureItems() {
		entry, err := registry.Lookup(ctx, item.AccountCode)
		require.NoError(t, err)
		require.Equal(t, depara.StatusPending, entry.Status)
	}

	// Known chart prefixes get suggestions; the exotic code gets none.
	byCode := map[string]NewAccount{}
	for _, acc := range report.NovasContas {
		byCode[acc.AccountCode] = acc
	}
	require.Equal(t, "Receita de Serviços", byCode["3.01.01.01.00001"].SuggestedClassification)
	require.Equal(t, "Servidor/Cloud", byCode["4.03.01.09.00001"].SuggestedClassification)
	require.Empty(t, byCode["5.55.55.55.00001"].SuggestedClassification)

	require.Equal(t, []int{2025}, enq.years)
}

func TestImportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	registry := depara.NewMemoryStore()
	lines := NewMemoryLineStore()
	svc := NewService(registry, lines, nil, nil, nil)

	periods := []string{"2025-01", "2025-02"}
	_, err := svc.Import(ctx, 2025, periods, fixtureItems())
	require.NoError(t, err)
	second, err := svc.Import(ctx, 2025, periods, fixtureItems())
	require.NoError(t, err)

	// Second pass sees no unseen accounts and stored values are replaced,
	// not doubled.
	require.Empty(t, second.NovasContas)
	items, gotPeriods, err := lines.LinesForYear(ctx, 2025)
	require.NoError(t, err)
	require.Equal(t, periods, gotPeriods)
	require.Len(t, items, 3)
	for _, item := range items {
		if item.AccountCode == "3.01.01.01.00001" {
			require.Equal(t, 1000.0, item.Values["2025-01"])
		}
	}
}

func TestImportSkipsRowsWithoutCode(t *testing.T) {
	ctx := context.Background()
	svc := NewService(depara.NewMemoryStore(), NewMemoryLineStore(), nil, nil, nil)

	items := []LineItem{
		{AccountCode: "", AccountTitle: "linha quebrada", Values: map[string]float64{"2025-01": 5}},
		{AccountCode: "3.01.01.01.00001", AccountTitle: "Receita SaaS", Values: map[string]float64{"2025-01": 100}},
	}
	report, err := svc.Import(ctx, 2025, []string{"2025-01"}, items)
	require.NoError(t, err)
	require.Equal(t, 1, report.LinhasImportadas)
	require.Len(t, report.Warnings, 1)
	require.Contains(t, report.Warnings[0], "linha 1")
}

func TestImportMergesDuplicateAccountRows(t *testing.T) {
	ctx := context.Background()
	lines := NewMemoryLineStore()
	svc := NewService(depara.NewMemoryStore(), lines, nil, nil, nil)

	items := []LineItem{
		{AccountCode: "3.01.01.01.00001", AccountTitle: "Receita SaaS", Values: map[string]float64{"2025-01": 100, "2025-02": 200}},
		{AccountCode: "3.01.01.01.00001", AccountTitle: "Receita SaaS", Values: map[string]float64{"2025-01": 30}},
	}
	report, err := svc.Import(ctx, 2025, []string{"2025-01", "2025-02"}, items)
	require.NoError(t, err)
	require.Equal(t, 1, report.LinhasImportadas)
	require.Len(t, report.NovasContas, 1)
	require.Len(t, report.Warnings, 1)
	require.Contains(t, report.Warnings[0], "linha 2 duplica a conta 3.01.01.01.00001")

	stored, _, err := lines.LinesForYear(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, map[string]float64{"2025-01": 130, "2025-02": 200}, stored[0].Values)

	// The caller's maps are untouched by the merge.
	require.Equal(t, map[string]float64{"2025-01": 100, "2025-02": 200}, items[0].Values)
}

func TestImportWarnsOnValuesOutsideDeclaredPeriods(t *testing.T) {
	ctx := context.Background()
	lines := NewMemoryLineStore()
	svc := NewService(depara.NewMemoryStore(), lines, nil, nil, nil)

	items := []LineItem{
		{AccountCode: "3.01.01.01.00001", AccountTitle: "Receita SaaS", Values: map[string]float64{"2025-01": 100, "2025-03": 999, "2025-04": 1}},
	}
	report, err := svc.Import(ctx, 2025, []string{"2025-01", "2025-02"}, items)
	require.NoError(t, err)
	require.Equal(t, 1, report.LinhasImportadas)
	require.Len(t, report.Warnings, 2)
	require.Contains(t, report.Warnings[0], "período 2025-03 fora do lote")
	require.Contains(t, report.Warnings[1], "período 2025-04 fora do lote")

	stored, periods, err := lines.LinesForYear(ctx, 2025)
	require.NoError(t, err)
	require.Equal(t, []string{"2025-01"}, periods)
	require.Equal(t, map[string]float64{"2025-01": 100}, stored[0].Values)
}

func TestImportValidatesArguments(t *testing.T) {
	svc := NewService(depara.NewMemoryStore(), NewMemoryLineStore(), nil, nil, nil)

	_, err := svc.Import(context.Background(), 0, []string{"2025-01"}, nil)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Import(context.Background(), 2025, nil, nil)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestReplacePeriodsKeepsOtherPeriods(t *testing.T) {
	ctx := context.Background()
	lines := NewMemoryLineStore()

	err := lines.ReplacePeriods(ctx, 2025, []string{"2025-01"}, []LineItem{
		{AccountCode: "A", Values: map[string]float64{"2025-01": 1}},
	})
	require.NoError(t, err)
	err = lines.ReplacePeriods(ctx, 2025, []string{"2025-02"}, []LineItem{
		{AccountCode: "A", Values: map[string]float64{"2025-02": 2}},
	})
	require.NoError(t, err)

	items, periods, err := lines.LinesForYear(ctx, 2025)
	require.NoError(t, err)
	require.Equal(t, []string{"2025-01", "2025-02"}, periods)
	require.Len(t, items, 1)
	require.Equal(t, map[string]float64{"2025-01": 1, "2025-02": 2}, items[0].Values)
}

func TestRecentImportsCapped(t *testing.T) {
	ctx := context.Background()
	svc := NewService(depara.NewMemoryStore(), NewMemoryLineStore(), nil, nil, nil)

	for i := 0; i < maxRecentImports+5; i++ {
		_, err := svc.Import(ctx, 2025, []string{"2025-01"}, []LineItem{
			{AccountCode: "3.01.01.01.00001", Values: map[string]float64{"2025-01": float64(i)}},
		})
		require.NoError(t, err)
	}

	recent := svc.RecentImports()
	require.Len(t, recent, maxRecentImports)
}
