package statement

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/demonstra-fin/demonstra/internal/balancete"
	"github.com/demonstra-fin/demonstra/internal/depara"
)

func confirmed(code, title, classification string) depara.Entry {
	group := ""
	if g, ok := depara.GroupFor(classification); ok {
		group = g.Name
	}
	return depara.Entry{
		AccountCode:    code,
		AccountTitle:   title,
		Classification: classification,
		Group:          group,
		Status:         depara.StatusOK,
	}
}

func dreFixture() ([]balancete.LineItem, map[string]depara.Entry, []string) {
	items := []balancete.LineItem{
		{AccountCode: "3.01.01.01.00001", AccountTitle: "Receita SaaS", Values: map[string]float64{"2025-01": 100, "2025-02": 200}},
		{AccountCode: "3.01.01.01.00002", AccountTitle: "Receita Consultoria", Values: map[string]float64{"2025-01": 50}},
		{AccountCode: "4.03.01.09.00001", AccountTitle: "Servidores", Values: map[string]float64{"2025-01": -30, "2025-02": -40}},
		{AccountCode: "4.99.99.99.00001", AccountTitle: "Misteriosa", Values: map[string]float64{"2025-02": -7}},
	}
	entries := map[string]depara.Entry{
		"3.01.01.01.00001": confirmed("3.01.01.01.00001", "Receita SaaS", "Receita de Serviços"),
		"3.01.01.01.00002": confirmed("3.01.01.01.00002", "Receita Consultoria", "Receita de Serviços"),
		"4.03.01.09.00001": confirmed("4.03.01.09.00001", "Servidores", "Servidor/Cloud"),
	}
	return items, entries, []string{"2025-01", "2025-02"}
}

func findRow(t *testing.T, rows []Row, label string) Row {
	t.Helper()
	for _, r := range rows {
		if r.Label == label {
			return r
		}
	}
	t.Fatalf("row %q not found", label)
	return Row{}
}

func TestBuildParentEqualsSumOfLeaves(t *testing.T) {
	items, entries, periods := dreFixture()
	rows, _ := Build(KindDRE, items, entries, periods)

	for start, row := range rows {
		if !row.IsParent {
			continue
		}
		sums := make([]float64, len(row.Values))
		for _, leaf := range rows[start+1:] {
			if leaf.IsParent {
				break
			}
			for i, cell := range leaf.Values {
				sums[i] += cell.Amount
			}
		}
		for i, cell := range row.Values {
			require.InDelta(t, sums[i], cell.Amount, 1e-9, "%s %s", row.Label, cell.Period)
		}
	}
}

func TestBuildAggregatesByClassification(t *testing.T) {
	items, entries, periods := dreFixture()
	rows, structure := Build(KindDRE, items, entries, periods)

	receita := findRow(t, rows, "Receita de Serviços")
	require.Equal(t, []string{"3.01.01.01.00001", "3.01.01.01.00002"}, receita.Accounts)
	require.Equal(t, 150.0, receita.Values[0].Amount)
	require.Equal(t, 200.0, receita.Values[1].Amount)
	require.Equal(t, AccumulatedLabel, receita.Values[2].Period)
	require.Equal(t, 350.0, receita.Values[2].Amount)

	// Groups without any classified account are omitted; the unresolved
	// account trails in the pseudo-group.
	require.Equal(t, []string{"Receita", "Custos", UnclassifiedGroup}, structure.Parents)

	misteriosa := findRow(t, rows, "4.99.99.99.00001 · Misteriosa")
	require.Equal(t, 0.0, misteriosa.Values[0].Amount)
	require.Equal(t, -7.0, misteriosa.Values[1].Amount)
}

func TestBuildRoutesUnresolvedByCodeRoot(t *testing.T) {
	items := []balancete.LineItem{
		{AccountCode: "1.01.03.01.00001", AccountTitle: "Clientes", Values: map[string]float64{"2025-01": 10}},
		{AccountCode: "3.01.01.01.00001", AccountTitle: "Receita", Values: map[string]float64{"2025-01": 20}},
	}
	periods := []string{"2025-01"}

	dre, _ := Build(KindDRE, items, map[string]depara.Entry{}, periods)
	bp, _ := Build(KindBP, items, map[string]depara.Entry{}, periods)

	require.Len(t, dre, 2) // parent + one leaf
	require.Equal(t, UnclassifiedGroup, dre[0].Label)
	require.Contains(t, dre[1].Label, "3.01.01.01.00001")

	require.Len(t, bp, 2)
	require.Contains(t, bp[1].Label, "1.01.03.01.00001")
}

func TestBuildGroupOrderIsCanonical(t *testing.T) {
	items := []balancete.LineItem{
		{AccountCode: "c1", Values: map[string]float64{"2025-01": -5}},
		{AccountCode: "r1", Values: map[string]float64{"2025-01": 100}},
		{AccountCode: "i1", Values: map[string]float64{"2025-01": -2}},
	}
	entries := map[string]depara.Entry{
		"c1": confirmed("c1", "", "Servidor/Cloud"),
		"r1": confirmed("r1", "", "Receita de Serviços"),
		"i1": confirmed("i1", "", "IRPJ"),
	}
	_, structure := Build(KindDRE, items, entries, []string{"2025-01"})
	require.Equal(t, []string{"Receita", "Custos", "IRPJ e CSLL"}, structure.Parents)
}

func TestBuildLeafOrderFollowsCatalogNotAlphabet(t *testing.T) {
	items := []balancete.LineItem{
		{AccountCode: "a", Values: map[string]float64{"2025-01": 1}},
		{AccountCode: "b", Values: map[string]float64{"2025-01": 2}},
	}
	entries := map[string]depara.Entry{
		// "Software" sorts before "Servidor/Cloud" alphabetically but
		// follows it in the catalog.
		"a": confirmed("a", "", "Software"),
		"b": confirmed("b", "", "Servidor/Cloud"),
	}
	rows, _ := Build(KindDRE, items, entries, []string{"2025-01"})
	require.Equal(t, "Custos", rows[0].Label)
	require.Equal(t, "Servidor/Cloud", rows[1].Label)
	require.Equal(t, "Software", rows[2].Label)
}

func TestBuildCustomClassificationAppendsToGroup(t *testing.T) {
	items := []balancete.LineItem{
		{AccountCode: "x", Values: map[string]float64{"2025-01": -3}},
		{AccountCode: "y", Values: map[string]float64{"2025-01": -4}},
	}
	entries := map[string]depara.Entry{
		"x": {AccountCode: "x", Classification: "P&D Capitalizado", Group: "Despesas Operacionais", Status: depara.StatusOK},
		"y": confirmed("y", "", "Ocupação"),
	}
	rows, _ := Build(KindDRE, items, entries, []string{"2025-01"})
	require.Equal(t, "Despesas Operacionais", rows[0].Label)
	require.Equal(t, "Ocupação", rows[1].Label)
	require.Equal(t, "P&D Capitalizado", rows[2].Label)
	require.Equal(t, -7.0, rows[0].Values[0].Amount)
}

func TestBuildConfirmedWithoutStatementGroupFallsBack(t *testing.T) {
	// Confirmed entries whose group matches no statement section must not
	// vanish; they roll into the pseudo-group of the statement their code
	// root points at.
	items := []balancete.LineItem{
		{AccountCode: "4.02.09.01.00001", AccountTitle: "P&D", Values: map[string]float64{"2025-01": -12}},
	}
	periods := []string{"2025-01"}

	for _, entry := range []depara.Entry{
		{AccountCode: "4.02.09.01.00001", Classification: "P&D Capitalizado", Group: "", Status: depara.StatusOK},
		{AccountCode: "4.02.09.01.00001", Classification: "P&D Capitalizado", Group: "Intangível em Formação", Status: depara.StatusOK},
	} {
		entries := map[string]depara.Entry{entry.AccountCode: entry}

		dre, _ := Build(KindDRE, items, entries, periods)
		require.Len(t, dre, 2)
		require.Equal(t, UnclassifiedGroup, dre[0].Label)
		require.Equal(t, -12.0, dre[0].Values[0].Amount)
		require.Contains(t, dre[1].Label, "4.02.09.01.00001")

		bp, _ := Build(KindBP, items, entries, periods)
		require.Empty(t, bp)
	}
}

func TestBuildReclassificationMovesLeaf(t *testing.T) {
	items := []balancete.LineItem{
		{AccountCode: "3.01.01.01.00009", AccountTitle: "Receita nova", Values: map[string]float64{"2025-01": 80}},
	}
	periods := []string{"2025-01"}

	before, _ := Build(KindDRE, items, map[string]depara.Entry{
		"3.01.01.01.00009": {AccountCode: "3.01.01.01.00009", Status: depara.StatusPending},
	}, periods)
	require.Equal(t, UnclassifiedGroup, before[0].Label)
	require.Equal(t, 80.0, before[0].Values[0].Amount)

	after, _ := Build(KindDRE, items, map[string]depara.Entry{
		"3.01.01.01.00009": confirmed("3.01.01.01.00009", "Receita nova", "Receita de Serviços"),
	}, periods)
	require.Equal(t, "Receita", after[0].Label)
	require.Equal(t, 80.0, after[0].Values[0].Amount)
	for _, row := range after {
		require.NotEqual(t, UnclassifiedGroup, row.Label)
	}
}
