// Package statement aggregates classified line items into the DRE, BP and
// DFC statements and derives the dashboard indicators. Statements are never
// persisted: they are recomputed from line items plus the current registry
// snapshot on every read, so a classification confirmation is visible on
// the next call.
package statement

// Kind identifies a financial statement.
type Kind string

const (
	KindDRE Kind = "DRE"
	KindBP  Kind = "BP"
	KindDFC Kind = "DFC"
)

// UnclassifiedGroup is the pseudo-group that collects accounts whose
// registry entry is still pending. Nothing imported is ever dropped.
const UnclassifiedGroup = "Não Classificado"

// AccumulatedLabel is the total column appended after the period columns.
const AccumulatedLabel = "Acumulado"

// Cell is one period value of a statement row.
type Cell struct {
	Period string  `json:"periodo"`
	Amount float64 `json:"valor"`
}

// Row is one rendered statement row. Parent rows are classification groups
// whose values are the exact per-column sum of their leaves.
type Row struct {
	Label          string   `json:"label"`
	Level          int      `json:"level"`
	IsParent       bool     `json:"is_parent"`
	Classification string   `json:"classificacao,omitempty"`
	Accounts       []string `json:"contas,omitempty"`
	Values         []Cell   `json:"valores"`
}

// Structure describes the section skeleton of a built statement.
type Structure struct {
	Parents []string `json:"parents"`
}

// Result is the payload of GET /api/data/{kind}.
type Result struct {
	Statement Kind      `json:"statement"`
	Year      int       `json:"year"`
	Rows      []Row     `json:"rows"`
	Structure Structure `json:"structure"`
	Warnings  []string  `json:"warnings,omitempty"`
}

// IndicatorSet carries the absolute DRE figures and margin ratios for one
// year, computed from the accumulated column. Sign conventions pass through
// from the DRE unchanged.
type IndicatorSet struct {
	Year     int                `json:"year"`
	Absolute map[string]float64 `json:"absolute"`
	Margins  map[string]float64 `json:"margins"`
}

// Summary describes the data available to the dashboard.
type Summary struct {
	Periods []string `json:"periods"`
	Years   []int    `json:"years"`
}

// total returns the accumulated (last) cell amount of a row.
func (r Row) total() float64 {
	if len(r.Values) == 0 {
		return 0
	}
	return r.Values[len(r.Values)-1].Amount
}
