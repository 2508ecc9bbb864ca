// Package balancete owns imported trial-balance line items and the
// reconciliation of their account codes against the DEPARA registry.
package balancete

import (
	"context"
	"time"
)

// LineItem is one imported raw account row: monthly values keyed by
// period label ("2025-01"). Immutable once created; identified by the
// account code.
type LineItem struct {
	AccountCode  string             `json:"codigo_conta"`
	AccountTitle string             `json:"titulo_conta"`
	Values       map[string]float64 `json:"valores"`
}

// NewAccount describes an account seen for the first time in an import,
// with the canonical mapping's suggestion when one exists. The registry
// entry itself stays Pendente until a user confirms.
type NewAccount struct {
	AccountCode             string `json:"codigo_conta"`
	AccountTitle            string `json:"titulo_conta"`
	SuggestedClassification string `json:"classificacao_sugerida,omitempty"`
	SuggestedGroup          string `json:"grupo_sugerido,omitempty"`
}

// Report is the reconciliation outcome surfaced to the upload collaborator.
type Report struct {
	BatchID          string       `json:"batch_id"`
	Ano              int          `json:"ano"`
	LinhasImportadas int          `json:"linhas_importadas"`
	NovasContas      []NewAccount `json:"novas_contas"`
	PendingCount     int          `json:"pending_count"`
	Warnings         []string     `json:"warnings"`
}

// ImportSummary is a recent-processing record kept in memory for the
// upload status endpoint.
type ImportSummary struct {
	BatchID          string    `json:"batch_id"`
	Ano              int       `json:"ano"`
	Periodos         []string  `json:"periodos"`
	LinhasImportadas int       `json:"linhas_importadas"`
	NovasContas      int       `json:"novas_contas"`
	Warnings         []string  `json:"warnings"`
	Timestamp        time.Time `json:"timestamp"`
}

// LineStore persists imported line values. Re-importing a period replaces
// its values; other periods are untouched.
type LineStore interface {
	ReplacePeriods(ctx context.Context, year int, periods []string, items []LineItem) error
	// LinesForYear returns every stored line item for the year together
	// with the ordered list of periods that have data.
	LinesForYear(ctx context.Context, year int) ([]LineItem, []string, error)
	// Periods returns all periods with data, across years, ordered.
	Periods(ctx context.Context) ([]string, error)
}
