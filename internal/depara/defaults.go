package depara

import (
	"sort"
	"strings"
)

// GroupDef describes one statement section and the canonical classifications
// that roll up into it, in presentation order.
type GroupDef struct {
	Name            string
	Statement       string // "DRE" or "BP"
	Classifications []string
}

// DREGroups is the canonical DRE section ordering.
var DREGroups = []GroupDef{
	{Name: "Receita", Statement: "DRE", Classifications: []string{
		"Receita de Serviços",
		"Outras Receitas",
	}},
	{Name: "Deduções", Statement: "DRE", Classifications: []string{
		"ISS",
		"PIS",
		"COFINS",
		"Descontos e Devoluções",
	}},
	{Name: "Custos", Statement: "DRE", Classifications: []string{
		"CSP - Equipe",
		"Servidor/Cloud",
		"Software",
	}},
	{Name: "Despesas Operacionais", Statement: "DRE", Classifications: []string{
		"Ocupação",
		"D&A",
		"Equipe de Originação",
		"Viagens e Estadias",
		"Despesas de Marketing",
		"Equipe Administrativa e RH",
		"Serviços de Terceiros",
		"Tributárias",
		"Demais G&A",
	}},
	{Name: "Resultado Financeiro", Statement: "DRE", Classifications: []string{
		"Receitas Financeiras",
		"Despesas Financeiras",
	}},
	{Name: "Resultado não Operacional", Statement: "DRE", Classifications: []string{
		"Receitas não Operacionais",
		"Despesas não Operacionais",
	}},
	{Name: "IRPJ e CSLL", Statement: "DRE", Classifications: []string{
		"IRPJ",
		"CSLL",
	}},
}

// BPGroups is the canonical balance sheet section ordering.
var BPGroups = []GroupDef{
	{Name: "Ativo Circulante", Statement: "BP", Classifications: []string{
		"Caixa e Equivalentes de Caixa",
		"Clientes",
		"Despesas Pagas Antecipadamente",
		"Outros Créditos",
	}},
	{Name: "Ativo Não Circulante", Statement: "BP", Classifications: []string{
		"Realizável a Longo Prazo",
		"Bens em Operação",
		"Depreciação Acumulada",
		"Softwares e Projetos",
		"Amortização Acumulada",
	}},
	{Name: "Passivo Circulante", Statement: "BP", Classifications: []string{
		"Empréstimos e Financiamentos CP",
		"Dividendos a Distribuir",
		"Fornecedores",
		"Obrigações Trabalhistas e Previdenciárias",
		"Obrigações Tributárias",
		"Outras Obrigações",
	}},
	{Name: "Passivo Não Circulante", Statement: "BP", Classifications: []string{
		"Empréstimos e Financiamentos LP",
	}},
	{Name: "Patrimônio Líquido", Statement: "BP", Classifications: []string{
		"Capital Social",
		"Reserva de Lucros",
		"Lucros e Prejuízos Acumulados",
	}},
}

// DefaultPrefixMapping maps a level-4 account code prefix (sub-group) to a
// classification. Used only to suggest classifications for unseen accounts;
// the registry entry itself stays Pendente until confirmed.
var DefaultPrefixMapping = map[string]string{
	// BP - ativo
	"1.01.01.02": "Caixa e Equivalentes de Caixa",
	"1.01.01.03": "Caixa e Equivalentes de Caixa",
	"1.01.03.01": "Clientes",
	"1.01.03.02": "Despesas Pagas Antecipadamente",
	"1.01.03.04": "Outros Créditos",
	"1.01.03.05": "Outros Créditos",
	"1.01.03.06": "Outros Créditos",
	"1.01.03.08": "Outros Créditos",
	"1.01.03.10": "Outros Créditos",
	"1.02.02.07": "Realizável a Longo Prazo",
	"1.02.02.18": "Realizável a Longo Prazo",
	"1.02.03.01": "Bens em Operação",
	"1.02.03.03": "Depreciação Acumulada",
	"1.02.04.01": "Softwares e Projetos",
	"1.02.04.02": "Amortização Acumulada",

	// BP - passivo
	"2.01.01.01": "Fornecedores",
	"2.01.01.02": "Outras Obrigações",
	"2.01.01.03": "Empréstimos e Financiamentos CP",
	"2.01.01.05": "Obrigações Tributárias",
	"2.01.01.06": "Obrigações Tributárias",
	"2.01.01.07": "Obrigações Trabalhistas e Previdenciárias",
	"2.01.01.08": "Obrigações Trabalhistas e Previdenciárias",
	"2.01.01.09": "Obrigações Trabalhistas e Previdenciárias",
	"2.01.01.12": "Dividendos a Distribuir",
	"2.01.01.99": "Outras Obrigações",
	"2.02.01.04": "Empréstimos e Financiamentos LP",
	"2.03.01.01": "Capital Social",
	"2.03.04.01": "Lucros e Prejuízos Acumulados",

	// DRE - receita
	"3.01.01.01": "Receita de Serviços",
	"3.01.02.01": "Outras Receitas",
	"3.02.01.01": "Receitas não Operacionais",

	// DRE - despesa
	"4.01.01.01": "CSP - Equipe",
	"4.01.01.02": "CSP - Equipe",
	"4.01.01.03": "CSP - Equipe",
	"4.01.01.04": "Equipe Administrativa e RH",
	"4.01.01.05": "Demais G&A",
	"4.01.01.06": "Despesas de Marketing",
	"4.01.01.07": "Tributárias",
	"4.01.01.08": "D&A",
	"4.01.01.09": "Despesas Financeiras",
	"4.01.02.01": "Despesas não Operacionais",
	"4.02.01.01": "Despesas não Operacionais",

	// DRE - custos
	"4.03.01.03": "CSP - Equipe",
	"4.03.01.04": "Software",
	"4.03.01.09": "Servidor/Cloud",

	// DRE - impostos
	"4.98.03": "CSLL",
	"4.98.04": "IRPJ",
}

// SpecificAccountMapping refines the prefix mapping for exact account codes.
var SpecificAccountMapping = map[string]string{
	"3.01.01.02.00004": "PIS",
	"3.01.01.02.00005": "COFINS",
	"3.01.01.02.00006": "ISS",
	"3.01.01.02.00012": "Descontos e Devoluções",
}

var classificationGroups = buildClassificationGroups()

func buildClassificationGroups() map[string]GroupDef {
	m := make(map[string]GroupDef)
	for _, groups := range [][]GroupDef{DREGroups, BPGroups} {
		for _, g := range groups {
			for _, c := range g.Classifications {
				m[c] = g
			}
		}
	}
	return m
}

// GroupFor resolves the statement section a classification belongs to.
func GroupFor(classification string) (GroupDef, bool) {
	g, ok := classificationGroups[classification]
	return g, ok
}

// AllClassifications returns the sorted canonical classification labels.
func AllClassifications() []string {
	out := make([]string, 0, len(classificationGroups))
	for c := range classificationGroups {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Suggest proposes a classification for an unseen account code, checking
// the exact-code refinements first and then the level-4 prefix mapping.
// The empty string means no suggestion.
func Suggest(accountCode string) (classification, group string) {
	if c, ok := SpecificAccountMapping[accountCode]; ok {
		if g, ok := GroupFor(c); ok {
			return c, g.Name
		}
		return c, ""
	}
	prefix := Level4Prefix(accountCode)
	if prefix == "" {
		return "", ""
	}
	c, ok := DefaultPrefixMapping[prefix]
	if !ok {
		return "", ""
	}
	if g, ok := GroupFor(c); ok {
		return c, g.Name
	}
	return c, ""
}

// Level4Prefix extracts the sub-group prefix of an account code.
// "1.01.01.02.00004" yields "1.01.01.02"; codes with four or fewer parts
// are returned as-is so short tax codes like "4.98.03" resolve directly.
func Level4Prefix(code string) string {
	if code == "" {
		return ""
	}
	parts := strings.Split(code, ".")
	if len(parts) >= 4 {
		return strings.Join(parts[:4], ".")
	}
	return code
}
