package statement

// DFC section and line labels. The cash flow is fully derived: net income
// from the DRE, D&A added back, and balance movements with inverted sign
// (balances keep bookkeeping signs, so a liability increase is a negative
// movement and inverts into a cash inflow).
const (
	dfcOperating = "Atividades Operacionais"
	dfcInvesting = "Atividades de Investimento"
	dfcFinancing = "Atividades de Financiamento"

	dfcNetIncome    = "Lucro Líquido"
	dfcDepreciation = "(+) Depreciação e Amortização"
	dfcCashDelta    = "Variação de Caixa no Período"
	dfcCashOpening  = "Saldo Inicial de Caixa"
	dfcCashClosing  = "Saldo Final de Caixa"

	daClassification   = "D&A"
	cashClassification = "Caixa e Equivalentes de Caixa"
)

var dfcWorkingCapital = []string{
	"Clientes",
	"Despesas Pagas Antecipadamente",
	"Outros Créditos",
	"Fornecedores",
	"Obrigações Trabalhistas e Previdenciárias",
	"Obrigações Tributárias",
	"Outras Obrigações",
}

var dfcInvestingLines = []string{
	"Realizável a Longo Prazo",
	"Bens em Operação",
	"Softwares e Projetos",
}

var dfcFinancingLines = []string{
	"Empréstimos e Financiamentos CP",
	"Empréstimos e Financiamentos LP",
	"Dividendos a Distribuir",
	"Capital Social",
}

// BuildDFC assembles the indirect-method cash flow from already-built DRE
// and BP rows for the same year and period columns.
func BuildDFC(dre, bp []Row, periods []string) ([]Row, Structure) {
	n := len(periods)
	bpLeaf := leafSeries(bp, n)
	dreLeaf := leafSeries(dre, n)

	netIncome := make([]float64, n)
	for _, row := range dre {
		if !row.IsParent || row.Label == UnclassifiedGroup {
			continue
		}
		for i := 0; i < n; i++ {
			netIncome[i] += row.Values[i].Amount
		}
	}

	operating := []Row{seriesRow(dfcNetIncome, netIncome, periods)}
	if da, ok := dreLeaf[daClassification]; ok {
		operating = append(operating, seriesRow(dfcDepreciation, negate(da), periods))
	}
	operating = append(operating, deltaRows(bpLeaf, dfcWorkingCapital, periods)...)

	investing := deltaRows(bpLeaf, dfcInvestingLines, periods)
	financing := deltaRows(bpLeaf, dfcFinancingLines, periods)

	var rows []Row
	var parents []string
	for _, section := range []struct {
		label  string
		leaves []Row
	}{
		{dfcOperating, operating},
		{dfcInvesting, investing},
		{dfcFinancing, financing},
	} {
		if len(section.leaves) == 0 {
			continue
		}
		rows = append(rows, parentRow(section.label, section.leaves, periods))
		rows = append(rows, section.leaves...)
		parents = append(parents, section.label)
	}

	delta := make([]float64, n)
	for _, row := range rows {
		if !row.IsParent {
			continue
		}
		for i := 0; i < n; i++ {
			delta[i] += row.Values[i].Amount
		}
	}
	rows = append(rows, seriesRow(dfcCashDelta, delta, periods))

	if cash, ok := bpLeaf[cashClassification]; ok {
		opening := make([]float64, n)
		closing := make([]float64, n)
		var running float64
		for i := 0; i < n; i++ {
			opening[i] = running
			running += cash[i]
			closing[i] = running
		}
		rows = append(rows, balanceRow(dfcCashOpening, opening, periods, firstValue),
			balanceRow(dfcCashClosing, closing, periods, lastValue))
	}

	return rows, Structure{Parents: parents}
}

// leafSeries indexes leaf rows by classification as plain period series,
// without the accumulated column.
func leafSeries(rows []Row, n int) map[string][]float64 {
	out := make(map[string][]float64)
	for _, row := range rows {
		if row.IsParent || row.Classification == "" {
			continue
		}
		series := make([]float64, n)
		for i := 0; i < n; i++ {
			series[i] = row.Values[i].Amount
		}
		if prev, ok := out[row.Classification]; ok {
			for i := range series {
				series[i] += prev[i]
			}
		}
		out[row.Classification] = series
	}
	return out
}

func deltaRows(series map[string][]float64, classifications []string, periods []string) []Row {
	var rows []Row
	for _, c := range classifications {
		movement, ok := series[c]
		if !ok {
			continue
		}
		rows = append(rows, seriesRow("Δ "+c, negate(movement), periods))
	}
	return rows
}

func negate(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = -v
	}
	return out
}

// seriesRow renders an additive series with a summed accumulated column.
func seriesRow(label string, series []float64, periods []string) Row {
	values := make([]Cell, 0, len(periods)+1)
	var total float64
	for i, p := range periods {
		total += series[i]
		values = append(values, Cell{Period: p, Amount: series[i]})
	}
	values = append(values, Cell{Period: AccumulatedLabel, Amount: total})
	return Row{Label: label, Level: 1, Values: values}
}

func firstValue(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[0]
}

func lastValue(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// balanceRow renders a point-in-time series; the accumulated column takes
// the boundary value instead of a sum.
func balanceRow(label string, series []float64, periods []string, boundary func([]float64) float64) Row {
	values := make([]Cell, 0, len(periods)+1)
	for i, p := range periods {
		values = append(values, Cell{Period: p, Amount: series[i]})
	}
	values = append(values, Cell{Period: AccumulatedLabel, Amount: boundary(series)})
	return Row{Label: label, Level: 1, Values: values}
}
