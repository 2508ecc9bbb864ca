package statement

import "math"

// Indicator label keys. Absolute figures keep DRE sign conventions
// (deductions, costs and expenses are negative); margins are percentages.
const (
	IndReceitaBruta     = "receita_bruta"
	IndReceitaLiquida   = "receita_liquida"
	IndLucroBruto       = "lucro_bruto"
	IndLucroOperacional = "lucro_operacional"
	IndEBITDA           = "ebitda"
	IndLucroLiquido     = "lucro_liquido"

	IndMargemBruta       = "margem_bruta"
	IndMargemOperacional = "margem_operacional"
	IndMargemEBITDA      = "margem_ebitda"
	IndMargemLiquida     = "margem_liquida"
)

// IndicatorPolicy selects how derived figures are computed.
type IndicatorPolicy struct {
	// EBITDAAddBackDA adds the D&A expense back on top of the operating
	// result. When false EBITDA equals the operating result as reported.
	EBITDAAddBackDA bool
}

// ComputeIndicators derives the indicator set from built DRE rows, using
// the accumulated column. Margins divide by receita líquida and are zero
// when it is zero, never NaN or an error.
func ComputeIndicators(year int, dre []Row, policy IndicatorPolicy) IndicatorSet {
	groups := make(map[string]float64)
	leaves := make(map[string]float64)
	for _, row := range dre {
		if row.IsParent {
			groups[row.Label] += row.total()
			continue
		}
		if row.Classification != "" {
			leaves[row.Classification] += row.total()
		}
	}

	receitaBruta := groups["Receita"]
	receitaLiquida := receitaBruta + groups["Deduções"]
	lucroBruto := receitaLiquida + groups["Custos"]
	lucroOperacional := lucroBruto + groups["Despesas Operacionais"]
	lucroLiquido := lucroOperacional +
		groups["Resultado Financeiro"] +
		groups["Resultado não Operacional"] +
		groups["IRPJ e CSLL"]

	ebitda := lucroOperacional
	if policy.EBITDAAddBackDA {
		ebitda -= leaves[daClassification]
	}

	return IndicatorSet{
		Year: year,
		Absolute: map[string]float64{
			IndReceitaBruta:     round2(receitaBruta),
			IndReceitaLiquida:   round2(receitaLiquida),
			IndLucroBruto:       round2(lucroBruto),
			IndLucroOperacional: round2(lucroOperacional),
			IndEBITDA:           round2(ebitda),
			IndLucroLiquido:     round2(lucroLiquido),
		},
		Margins: map[string]float64{
			IndMargemBruta:       margin(lucroBruto, receitaLiquida),
			IndMargemOperacional: margin(lucroOperacional, receitaLiquida),
			IndMargemEBITDA:      margin(ebitda, receitaLiquida),
			IndMargemLiquida:     margin(lucroLiquido, receitaLiquida),
		},
	}
}

func margin(value, receitaLiquida float64) float64 {
	if receitaLiquida == 0 {
		return 0
	}
	return round2(value / math.Abs(receitaLiquida) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
